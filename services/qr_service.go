package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/skip2/go-qrcode"
	"github.com/yeremiapane/dineflow/models"
	"gorm.io/gorm"
)

type QRCode struct {
	URL     string `json:"url"`
	DataURL string `json:"data_url"`
}

type TableQR struct {
	TableID uint   `json:"table_id"`
	Code    string `json:"code"`
	QRCode
}

// QRService builds the ordering links printed on tables and in rooms.
type QRService struct {
	db      *gorm.DB
	baseURL string
	size    int
}

func NewQRService(db *gorm.DB, baseURL string, size int) *QRService {
	if size <= 0 {
		size = 256
	}
	return &QRService{db: db, baseURL: strings.TrimRight(baseURL, "/"), size: size}
}

// base prefers the qr_base_url setting over the configured default.
func (s *QRService) base(ctx context.Context) string {
	var setting models.SystemConfig
	err := s.db.WithContext(ctx).Where(&models.SystemConfig{Key: models.ConfigQRBaseURL}).First(&setting).Error
	if err == nil && strings.TrimSpace(setting.Value) != "" {
		return strings.TrimRight(strings.TrimSpace(setting.Value), "/")
	}
	return s.baseURL
}

func TableURL(base, code string) string {
	return base + "/order?table=" + url.QueryEscape(code)
}

func RoomURL(base, number string) string {
	return base + "/order?room=" + url.QueryEscape(number)
}

// Encode renders content as a PNG data URL.
func (s *QRService) Encode(content string) (*QRCode, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, s.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return &QRCode{
		URL:     content,
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// SVG renders content as a square-module SVG image, one path for all dark modules.
func (s *QRService) SVG(content string) ([]byte, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	bitmap := q.Bitmap()
	n := len(bitmap)

	var d strings.Builder
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&d, "M%d %dh1v1h-1z", x, y)
			}
		}
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(s.size, s.size,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, n, n),
		`shape-rendering="crispEdges"`)
	canvas.Rect(0, 0, n, n, `fill="#ffffff"`)
	canvas.Path(d.String(), `fill="#000000"`)
	canvas.End()
	return buf.Bytes(), nil
}

func (s *QRService) table(ctx context.Context, id uint) (*models.DiningTable, error) {
	var table models.DiningTable
	err := s.db.WithContext(ctx).First(&table, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("table %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find table %d: %w", id, err)
	}
	return &table, nil
}

func (s *QRService) ForTable(ctx context.Context, id uint) (*QRCode, error) {
	table, err := s.table(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Encode(TableURL(s.base(ctx), table.Code))
}

func (s *QRService) TableSVG(ctx context.Context, id uint) ([]byte, error) {
	table, err := s.table(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SVG(TableURL(s.base(ctx), table.Code))
}

func (s *QRService) ForRoom(ctx context.Context, id uint) (*QRCode, error) {
	var room models.Room
	err := s.db.WithContext(ctx).First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("room %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find room %d: %w", id, err)
	}
	return s.Encode(RoomURL(s.base(ctx), room.Number))
}

// Batch returns a code per requested table; unknown ids fail the whole batch.
func (s *QRService) Batch(ctx context.Context, ids []uint) ([]TableQR, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: table_ids is empty", models.ErrValidation)
	}
	base := s.base(ctx)
	out := make([]TableQR, 0, len(ids))
	for _, id := range ids {
		table, err := s.table(ctx, id)
		if err != nil {
			return nil, err
		}
		code, err := s.Encode(TableURL(base, table.Code))
		if err != nil {
			return nil, err
		}
		out = append(out, TableQR{TableID: table.ID, Code: table.Code, QRCode: *code})
	}
	return out, nil
}

// ScanTable resolves the table behind a scanned code for the ordering page.
func (s *QRService) ScanTable(ctx context.Context, code string) (*models.DiningTable, error) {
	var table models.DiningTable
	err := s.db.WithContext(ctx).Where("code = ? AND active = ?", code, true).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("table %q: %w", code, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find table %q: %w", code, err)
	}
	return &table, nil
}
