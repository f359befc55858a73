package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hennedo/escpos"
	"github.com/mattn/go-runewidth"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/repository"
	"github.com/yeremiapane/dineflow/utils"
)

var (
	ErrPrinterNotConfigured = errors.New("no printer configured")
	ErrPrinterUnavailable   = errors.New("printer unavailable")
)

const ticketWidth = 42

type Printer interface {
	Print(ctx context.Context, data []byte) error
}

// NetworkPrinter writes raw bytes to a printer listening on TCP (usually port 9100).
type NetworkPrinter struct {
	Addr    string
	Timeout time.Duration
}

func (p *NetworkPrinter) Print(ctx context.Context, data []byte) error {
	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrinterUnavailable, err)
	}
	defer conn.Close()

	if p.Timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(p.Timeout))
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrPrinterUnavailable, err)
	}
	return nil
}

// RenderTicket lays out a kitchen ticket for an 80mm thermal printer.
func RenderTicket(order *models.Order, restaurant, currency string) ([]byte, error) {
	var buf bytes.Buffer
	p := escpos.New(&buf)
	var err error
	line := func(s string) {
		if err == nil {
			_, err = p.Write(s + "\n")
		}
	}
	rule := strings.Repeat("-", ticketWidth)

	p.Initialize()
	p.Justify(escpos.JustifyCenter).Bold(true).Size(2, 2)
	line(restaurant)
	p.Bold(false).Size(1, 1)
	line(fmt.Sprintf("Order #%d", order.ID))
	line(order.CreatedAt.Format("02/01/2006 15:04"))

	p.Justify(escpos.JustifyLeft)
	line(rule)
	p.Bold(true)
	line("Table: " + order.TableID)
	if order.RoomNumber != nil && *order.RoomNumber != "" {
		line("Room:  " + *order.RoomNumber)
	}
	p.Bold(false)
	line(rule)

	for _, item := range order.Items {
		left := fmt.Sprintf("%dx %s", item.Quantity, item.Name)
		line(columns(left, utils.FormatCurrency(item.Subtotal(), "")))
	}
	line(rule)
	p.Bold(true)
	line(columns("TOTAL", utils.FormatCurrency(order.TotalAmount, currency)))
	p.Bold(false)

	if order.Note != "" {
		line(rule)
		line("Note: " + order.Note)
	}
	if err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	if err := p.PrintAndCut(); err != nil {
		return nil, fmt.Errorf("render ticket: %w", err)
	}
	return buf.Bytes(), nil
}

// columns pads left and right into one ticket line of ticketWidth display
// cells, truncating left on a rune boundary if needed.
func columns(left, right string) string {
	rw := runewidth.StringWidth(right)
	space := ticketWidth - rw - 1
	if space < 1 {
		return left + " " + right
	}
	if runewidth.StringWidth(left) > space {
		left = runewidth.Truncate(left, space, "")
	}
	return runewidth.FillRight(left, ticketWidth-rw) + right
}

type PrintService struct {
	orders     repository.OrderRepository
	printer    Printer
	restaurant string
	currency   string
}

// NewPrintService accepts a nil printer; printing then fails with ErrPrinterNotConfigured.
func NewPrintService(orders repository.OrderRepository, printer Printer, restaurant, currency string) *PrintService {
	return &PrintService{orders: orders, printer: printer, restaurant: restaurant, currency: currency}
}

func (s *PrintService) PrintOrder(ctx context.Context, id uint) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s.printer == nil {
		return ErrPrinterNotConfigured
	}
	ticket, err := RenderTicket(order, s.restaurant, s.currency)
	if err != nil {
		return err
	}
	if err := s.printer.Print(ctx, ticket); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{"order_id": id}).WithError(err).Error("print ticket failed")
		return err
	}
	utils.InfoLogger.WithField("order_id", id).Info("kitchen ticket printed")
	return nil
}
