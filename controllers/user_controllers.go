package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/repository"
	"github.com/yeremiapane/dineflow/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errInvalidCredentials = errors.New("invalid credentials")

type UserController struct {
	DB        *gorm.DB
	Users     *repository.UserRepository
	Tokens    *utils.TokenManager
	Blacklist *utils.TokenBlacklist
}

func NewUserController(db *gorm.DB, tokens *utils.TokenManager, blacklist *utils.TokenBlacklist) *UserController {
	return &UserController{
		DB:        db,
		Users:     repository.NewUserRepository(db),
		Tokens:    tokens,
		Blacklist: blacklist,
	}
}

// Login checks email and password and returns a bearer token.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			utils.RespondAppError(c, err)
			return
		}
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil || !user.Active {
		utils.InfoLogger.WithField("email", user.Email).Warn("login rejected")
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	token, expiresAt, err := uc.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.WithField("user_id", user.ID).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

// Logout revokes the caller's token until it would have expired.
func (uc *UserController) Logout(c *gin.Context) {
	p, _ := utils.CurrentPrincipal(c)
	uc.Blacklist.Revoke(p.Token, p.ExpiresAt)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (uc *UserController) Profile(c *gin.Context) {
	p, _ := utils.CurrentPrincipal(c)
	user, err := uc.Users.FindByID(c.Request.Context(), p.UserID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", user)
}

func (uc *UserController) ListUsers(c *gin.Context) {
	q := uc.DB.WithContext(c.Request.Context()).Order("id asc")
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	users := []models.User{}
	if err := q.Find(&users).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", users)
}

func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := uc.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User detail", user)
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role" binding:"required,user_role"`
		Active   *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	user := models.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hashed,
		Role:         req.Role,
		Active:       req.Active == nil || *req.Active,
	}
	if err := uc.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user created")
	utils.RespondJSON(c, http.StatusCreated, "User created", user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name     *string `json:"name"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Password *string `json:"password" binding:"omitempty,min=8"`
		Role     *string `json:"role" binding:"omitempty,user_role"`
		Active   *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != nil {
		if user.PasswordHash, err = hashPassword(*req.Password); err != nil {
			utils.RespondAppError(c, err)
			return
		}
	}

	if err := uc.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Save(user).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated", user)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if p, _ := utils.CurrentPrincipal(c); p != nil && p.UserID == id {
		utils.RespondError(c, http.StatusBadRequest, errors.New("you cannot delete your own account"))
		return
	}

	res := uc.DB.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		utils.RespondAppError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondAppError(c, fmt.Errorf("user %d: %w", id, models.ErrNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted", nil)
}
