// lyceum-crm/internal/handlers/profile_handler.go
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"lyceum-crm/config"
	"lyceum-crm/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func cacheKeyForUser(userID uint) string {
	return fmt.Sprintf("user:%d:data", userID)
}

// GetProfileHandler возвращает данные текущего авторизованного пользователя.
// Роли и права уже загружены middleware, из базы берутся только детали профиля.
func GetProfileHandler(c *gin.Context) {
	userIDVal, _ := c.Get("user_id")
	loginVal, _ := c.Get("login")
	rolesVal, _ := c.Get("roles")
	permissionsVal, _ := c.Get("permissions")

	userID, _ := userIDVal.(uint)
	login, _ := loginVal.(string)
	roles, _ := rolesVal.([]string)
	permissions, _ := permissionsVal.([]string)

	var userDetails models.User
	if err := config.DB.Select("full_name", "email", "phone", "student_id", "teacher_id").First(&userDetails, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User details not found in DB"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          userID,
		"login":       login,
		"fullName":    userDetails.FullName,
		"email":       userDetails.Email,
		"phone":       userDetails.Phone,
		"studentId":   userDetails.StudentID,
		"teacherId":   userDetails.TeacherID,
		"roles":       roles,
		"permissions": permissions,
	})
}

// UpdateProfileRequest - изменяемые поля профиля.
type UpdateProfileRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileHandler обновляет данные профиля текущего пользователя
// и сбрасывает кэш его данных в Redis.
func UpdateProfileHandler(c *gin.Context) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}
	userID := userIDVal.(uint)

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	user.FullName = req.FullName
	user.Email = req.Email
	user.Phone = req.Phone

	if req.NewPassword != "" {
		if req.OldPassword == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Для смены пароля необходимо указать старый пароль."})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Старый пароль указан неверно."})
			return
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash new password"})
			return
		}
		user.Password = string(hashedPassword)
	}

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile: " + err.Error()})
		return
	}

	if config.RDB != nil {
		if err := config.RDB.Del(config.Ctx, cacheKeyForUser(user.ID)).Err(); err != nil {
			slog.Warn("Failed to invalidate cache for user after profile update", "error", err, "user_id", user.ID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Профиль успешно обновлен!"})
}
