// lyceum-crm/internal/routes/api_routes.go
package routes

import (
	"lyceum-crm/internal/handlers"
	"lyceum-crm/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все маршруты API, требующие аутентификации.
// Middleware прав отсекает чужие роли до обработчика; владение конкретной
// записью (свой баланс, свое занятие) дополнительно проверяет фасад движка.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		// Профиль пользователя
		profile := apiGroup.Group("/profile")
		{
			profile.GET("", handlers.GetProfileHandler)
			profile.PUT("", handlers.UpdateProfileHandler)
		}

		// --- ПЛАТЕЖИ ---
		payments := apiGroup.Group("/payments")
		{
			payments.POST("", middleware.PermissionMiddleware("payments_create"), handlers.RecordPaymentHandler)
			payments.POST("/:id/confirm", middleware.PermissionMiddleware("payments_confirm"), handlers.ConfirmPaymentHandler)
		}

		// --- ЗАНЯТИЯ ---
		lessons := apiGroup.Group("/lessons")
		{
			lessons.POST("/:id/completion", handlers.SetLessonCompletionHandler)
		}

		// --- УЧЕНИКИ: баланс и история ---
		students := apiGroup.Group("/students")
		{
			students.GET("/:id/balance", handlers.GetStudentBalanceHandler)
			students.GET("/:id/payments", handlers.ListStudentPaymentsHandler)
			students.GET("/:id/lessons", handlers.ListStudentLessonsHandler)
		}

		// --- ПРЕПОДАВАТЕЛИ: выплаты и ставки ---
		teachers := apiGroup.Group("/teachers")
		{
			teachers.GET("/:id/payout", handlers.GetTeacherPayoutHandler)
			teachers.GET("/:id/payout/export", handlers.ExportTeacherPayoutHandler)
			teachers.GET("/:id/lessons", handlers.ListTeacherLessonsHandler)
			teachers.GET("/:id/rate", handlers.GetTeacherRateHandler)
			teachers.PUT("/:id/rate", middleware.PermissionMiddleware("rates_edit"), handlers.UpdateTeacherRateHandler)
		}

		// --- ЛИЧНЫЕ МАРШРУТЫ (идентификатор берется из учетной записи) ---
		my := apiGroup.Group("/my")
		{
			my.GET("/balance", handlers.GetMyBalanceHandler)
			my.GET("/payout", handlers.GetMyPayoutHandler)
		}

		// --- ВНЕШНИЕ СЕРВИСЫ (WEBHOOKS) ---
		webhooks := apiGroup.Group("/webhooks")
		{
			webhooks.POST("/1c-payment", middleware.PermissionMiddleware("payments_create"), handlers.Webhook1CHandler)
		}
	}
}
