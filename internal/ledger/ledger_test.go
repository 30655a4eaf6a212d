package ledger

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"lyceum-crm/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Teacher{},
		&models.Payment{},
		&models.Lesson{},
		&models.TeacherRate{},
	))
	return db
}

func newStudent(t *testing.T, db *gorm.DB) *models.Student {
	t.Helper()
	s := models.Student{LastName: "Иванов", FirstName: "Петр"}
	require.NoError(t, db.Create(&s).Error)
	return &s
}

func newTeacher(t *testing.T, db *gorm.DB) *models.Teacher {
	t.Helper()
	tc := models.Teacher{LastName: "Сидорова", FirstName: "Анна", Subject: "Математика"}
	require.NoError(t, db.Create(&tc).Error)
	return &tc
}

func newLesson(t *testing.T, db *gorm.DB, studentID, teacherID uint, at time.Time, completed bool) *models.Lesson {
	t.Helper()
	l := models.Lesson{StudentID: studentID, TeacherID: teacherID, ScheduledAt: at, IsCompleted: &completed}
	require.NoError(t, db.Create(&l).Error)
	return &l
}

func adminActor() Actor { return Actor{UserID: 1, Roles: []string{RoleAdmin}} }
func studentActor(studentID uint) Actor {
	return Actor{UserID: 2, Roles: []string{RoleStudent}, StudentID: &studentID}
}
func teacherActor(teacherID uint) Actor {
	return Actor{UserID: 3, Roles: []string{RoleTeacher}, TeacherID: &teacherID}
}

func TestCreatePaymentValidation(t *testing.T) {
	store := NewStore(setupDB(t))
	student := newStudent(t, store.db)

	_, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: 0})
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))

	_, err = store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: -3})
	require.Equal(t, KindValidation, KindOf(err))

	_, err = store.CreatePayment(CreatePaymentInput{StudentID: 9999, LessonsPaid: 5})
	require.Equal(t, KindNotFound, KindOf(err))

	payment, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: 5, Amount: 10500, Confirmed: true})
	require.NoError(t, err)
	require.NotZero(t, payment.ID)
	require.False(t, payment.PaidAt.IsZero())
}

func TestBalanceScenario(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)
	teacher := newTeacher(t, db)

	// Два подтвержденных платежа: 5 + 3 занятия.
	_, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: 5, Amount: 10500, Confirmed: true})
	require.NoError(t, err)
	p3, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: 3, Amount: 6300, Confirmed: true})
	require.NoError(t, err)

	// Шесть проведенных занятий.
	base := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		newLesson(t, db, student.ID, teacher.ID, base.AddDate(0, 0, i), true)
	}

	balance, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, 8, balance.TotalLessonsPaid)
	require.Equal(t, 6, balance.TotalCompletedClasses)
	require.Equal(t, 2, balance.RemainingLessons)
	require.True(t, balance.ShowWarning)

	// Седьмое проведенное занятие: остаток 1, предупреждение сохраняется.
	seventh := newLesson(t, db, student.ID, teacher.ID, base.AddDate(0, 0, 7), false)
	_, err = svc.CompleteLesson(adminActor(), seventh.ID, true)
	require.NoError(t, err)

	balance, err = store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, 1, balance.RemainingLessons)
	require.True(t, balance.ShowWarning)

	// Администратор снимает подтверждение платежа на 3 занятия:
	// оплачено 5, проведено 7, остаток -2, предупреждения нет.
	_, err = svc.ConfirmPayment(adminActor(), p3.ID, false)
	require.NoError(t, err)

	balance, err = store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, 5, balance.TotalLessonsPaid)
	require.Equal(t, 7, balance.TotalCompletedClasses)
	require.Equal(t, -2, balance.RemainingLessons)
	require.False(t, balance.ShowWarning)

	// Балансовое тождество: остаток = оплачено - проведено.
	require.Equal(t, balance.TotalLessonsPaid-balance.TotalCompletedClasses, balance.RemainingLessons)
}

func TestBalanceWarningWindow(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	teacher := newTeacher(t, db)

	// remaining -> showWarning: предупреждение только при 0 < остаток <= 2.
	cases := []struct {
		paid      int
		completed int
		warning   bool
	}{
		{2, 3, false}, // -1: перерасход
		{3, 3, false}, // 0: исчерпан
		{4, 3, true},  // 1
		{5, 3, true},  // 2
		{6, 3, false}, // 3
	}

	base := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		student := newStudent(t, db)
		_, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: tc.paid, Confirmed: true})
		require.NoError(t, err)
		for i := 0; i < tc.completed; i++ {
			newLesson(t, db, student.ID, teacher.ID, base.AddDate(0, 0, i), true)
		}

		balance, err := store.StudentBalance(student.ID)
		require.NoError(t, err)
		require.Equal(t, tc.paid-tc.completed, balance.RemainingLessons)
		require.Equal(t, tc.warning, balance.ShowWarning,
			"remaining=%d", balance.RemainingLessons)
	}
}

func TestUnconfirmedPaymentNotCounted(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	student := newStudent(t, db)

	_, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: 10, Confirmed: false})
	require.NoError(t, err)

	balance, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, 0, balance.TotalLessonsPaid)
}

func TestConfirmPaymentRoundTrip(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)

	payment, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: 4, Confirmed: true})
	require.NoError(t, err)

	before, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, 4, before.TotalLessonsPaid)

	// Снятие подтверждения убирает ровно lessonsPaid этого платежа.
	_, err = svc.ConfirmPayment(adminActor(), payment.ID, false)
	require.NoError(t, err)
	mid, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, 0, mid.TotalLessonsPaid)

	// Повторное подтверждение восстанавливает баланс.
	_, err = svc.ConfirmPayment(adminActor(), payment.ID, true)
	require.NoError(t, err)
	after, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, before.TotalLessonsPaid, after.TotalLessonsPaid)

	// Повторная установка того же значения - no-op для производных показателей.
	_, err = svc.ConfirmPayment(adminActor(), payment.ID, true)
	require.NoError(t, err)
	again, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, after, again)
}

func TestConfirmPaymentAdminOnly(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)
	teacher := newTeacher(t, db)

	payment, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: 4, Confirmed: true})
	require.NoError(t, err)

	for _, actor := range []Actor{studentActor(student.ID), teacherActor(teacher.ID)} {
		_, err := svc.ConfirmPayment(actor, payment.ID, false)
		require.Error(t, err)
		require.Equal(t, KindAuthorization, KindOf(err))
	}

	// Отказ в доступе не оставляет частичных записей.
	balance, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, 4, balance.TotalLessonsPaid)

	// Неизвестный платеж для администратора - not found.
	_, err = svc.ConfirmPayment(adminActor(), 9999, true)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestLessonCompletionOwnership(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)
	owner := newTeacher(t, db)
	other := newTeacher(t, db)

	lesson := newLesson(t, db, student.ID, owner.ID, time.Now(), false)

	// Чужой преподаватель не может отметить занятие.
	_, err := svc.CompleteLesson(teacherActor(other.ID), lesson.ID, true)
	require.Equal(t, KindAuthorization, KindOf(err))

	// Ученик тоже не может.
	_, err = svc.CompleteLesson(studentActor(student.ID), lesson.ID, true)
	require.Equal(t, KindAuthorization, KindOf(err))

	// Назначенный преподаватель может.
	updated, err := svc.CompleteLesson(teacherActor(owner.ID), lesson.ID, true)
	require.NoError(t, err)
	require.True(t, *updated.IsCompleted)

	// Администратор может отметить любое занятие.
	updated, err = svc.CompleteLesson(adminActor(), lesson.ID, false)
	require.NoError(t, err)
	require.False(t, *updated.IsCompleted)

	// Неизвестное занятие для владеющего преподавателя - not found.
	_, err = svc.CompleteLesson(teacherActor(owner.ID), 9999, true)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestLessonCompletionIdempotent(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)
	teacher := newTeacher(t, db)

	_, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: 5, Confirmed: true})
	require.NoError(t, err)
	lesson := newLesson(t, db, student.ID, teacher.ID, time.Now(), false)

	_, err = svc.CompleteLesson(adminActor(), lesson.ID, true)
	require.NoError(t, err)
	first, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	firstPayout, err := store.TeacherPayout(teacher.ID, Period{})
	require.NoError(t, err)

	// Повторная отметка тем же значением ничего не меняет.
	_, err = svc.CompleteLesson(adminActor(), lesson.ID, true)
	require.NoError(t, err)
	second, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	secondPayout, err := store.TeacherPayout(teacher.ID, Period{})
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, firstPayout, secondPayout)

	// Снятие отметки возвращает и баланс, и выплату.
	_, err = svc.CompleteLesson(adminActor(), lesson.ID, false)
	require.NoError(t, err)
	reverted, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reverted.TotalCompletedClasses)
	revertedPayout, err := store.TeacherPayout(teacher.ID, Period{})
	require.NoError(t, err)
	require.Equal(t, 0, revertedPayout.CompletedLessonCount)
}

func TestCompletionIndependentOfConfirmation(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	student := newStudent(t, db)
	teacher := newTeacher(t, db)

	// Занятие проведено до подтверждения оплаты: списание и выплата
	// учитываются, баланс уходит в минус.
	_, err := store.CreatePayment(CreatePaymentInput{StudentID: student.ID, LessonsPaid: 1, Confirmed: false})
	require.NoError(t, err)
	newLesson(t, db, student.ID, teacher.ID, time.Now(), true)

	balance, err := store.StudentBalance(student.ID)
	require.NoError(t, err)
	require.Equal(t, 0, balance.TotalLessonsPaid)
	require.Equal(t, 1, balance.TotalCompletedClasses)
	require.Equal(t, -1, balance.RemainingLessons)
	require.False(t, balance.ShowWarning)

	payout, err := store.TeacherPayout(teacher.ID, Period{})
	require.NoError(t, err)
	require.Equal(t, 1, payout.CompletedLessonCount)
}

func TestPayoutRateChange(t *testing.T) {
	t.Setenv("DEFAULT_HOURLY_RATE", "")

	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)
	teacher := newTeacher(t, db)

	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		newLesson(t, db, student.ID, teacher.ID, base.AddDate(0, 0, i), true)
	}

	// Ставка не задана: действует системная ставка 210.
	payout, err := store.TeacherPayout(teacher.ID, Period{})
	require.NoError(t, err)
	require.Equal(t, 10, payout.CompletedLessonCount)
	require.InDelta(t, 210.0, payout.Rate, 1e-9)
	require.InDelta(t, 2100.0, payout.Amount, 1e-9)

	// Администратор меняет ставку: выплата пересчитывается при следующем
	// чтении, записи занятий не меняются.
	var beforeUpdates []time.Time
	require.NoError(t, db.Model(&models.Lesson{}).Where("teacher_id = ?", teacher.ID).Pluck("updated_at", &beforeUpdates).Error)

	_, err = svc.SetTeacherRate(adminActor(), teacher.ID, 250)
	require.NoError(t, err)

	payout, err = store.TeacherPayout(teacher.ID, Period{})
	require.NoError(t, err)
	require.InDelta(t, 250.0, payout.Rate, 1e-9)
	require.InDelta(t, 2500.0, payout.Amount, 1e-9)

	var afterUpdates []time.Time
	require.NoError(t, db.Model(&models.Lesson{}).Where("teacher_id = ?", teacher.ID).Pluck("updated_at", &afterUpdates).Error)
	require.Equal(t, beforeUpdates, afterUpdates)

	// Повторная установка ставки - upsert той же строки.
	_, err = svc.SetTeacherRate(adminActor(), teacher.ID, 300)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.TeacherRate{}).Where("teacher_id = ?", teacher.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSetTeacherRateAuthorizationAndValidation(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	teacher := newTeacher(t, db)

	_, err := svc.SetTeacherRate(teacherActor(teacher.ID), teacher.ID, 250)
	require.Equal(t, KindAuthorization, KindOf(err))

	_, err = svc.SetTeacherRate(adminActor(), teacher.ID, 0)
	require.Equal(t, KindValidation, KindOf(err))

	_, err = svc.SetTeacherRate(adminActor(), 9999, 250)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestPayoutPeriodFilter(t *testing.T) {
	t.Setenv("DEFAULT_HOURLY_RATE", "")

	db := setupDB(t)
	store := NewStore(db)
	student := newStudent(t, db)
	teacher := newTeacher(t, db)

	october := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	november := time.Date(2025, 11, 15, 10, 0, 0, 0, time.UTC)
	newLesson(t, db, student.ID, teacher.ID, october, true)
	newLesson(t, db, student.ID, teacher.ID, november, true)
	newLesson(t, db, student.ID, teacher.ID, november.AddDate(0, 0, 1), true)

	from := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	payout, err := store.TeacherPayout(teacher.ID, Period{From: &from, To: &to})
	require.NoError(t, err)
	require.Equal(t, 2, payout.CompletedLessonCount)
	require.InDelta(t, 420.0, payout.Amount, 1e-9)

	// Правая граница не включается.
	payout, err = store.TeacherPayout(teacher.ID, Period{To: &from})
	require.NoError(t, err)
	require.Equal(t, 1, payout.CompletedLessonCount)
}

func TestPayoutUnknownTeacher(t *testing.T) {
	store := NewStore(setupDB(t))
	_, err := store.TeacherPayout(9999, Period{})
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestBalanceUnknownStudent(t *testing.T) {
	store := NewStore(setupDB(t))
	_, err := store.StudentBalance(9999)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestStudentBalanceReadAuthorization(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)
	stranger := newStudent(t, db)
	teacher := newTeacher(t, db)

	// Свой баланс, преподаватель и администратор - доступ разрешен.
	for _, actor := range []Actor{studentActor(student.ID), teacherActor(teacher.ID), adminActor()} {
		_, err := svc.StudentBalance(actor, student.ID)
		require.NoError(t, err)
	}

	// Чужой ученик - отказ без раскрытия существования записи.
	_, err := svc.StudentBalance(studentActor(stranger.ID), student.ID)
	require.Equal(t, KindAuthorization, KindOf(err))
}

func TestTeacherPayoutReadAuthorization(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)
	owner := newTeacher(t, db)
	other := newTeacher(t, db)

	_, err := svc.TeacherPayout(teacherActor(owner.ID), owner.ID, Period{})
	require.NoError(t, err)
	_, err = svc.TeacherPayout(adminActor(), owner.ID, Period{})
	require.NoError(t, err)

	_, err = svc.TeacherPayout(teacherActor(other.ID), owner.ID, Period{})
	require.Equal(t, KindAuthorization, KindOf(err))
	_, err = svc.TeacherPayout(studentActor(student.ID), owner.ID, Period{})
	require.Equal(t, KindAuthorization, KindOf(err))
}

func TestExternalPaymentDedupe(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)

	input := ExternalPaymentInput{
		StudentID:   student.ID,
		LessonsPaid: 8,
		Amount:      16800,
		PaidAt:      time.Now(),
		ExternalID:  "1c-txn-42",
		Confirmed:   true,
	}

	_, err := svc.RecordExternalPayment(input)
	require.NoError(t, err)

	// Повторная доставка вебхука не создает дубликат.
	_, err = svc.RecordExternalPayment(input)
	require.Equal(t, KindValidation, KindOf(err))

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("student_id = ?", student.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRecordPaymentAdminOnly(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	svc := NewService(store)
	student := newStudent(t, db)

	_, err := svc.RecordPayment(studentActor(student.ID), RecordPaymentInput{StudentID: student.ID, LessonsPaid: 5})
	require.Equal(t, KindAuthorization, KindOf(err))

	payment, err := svc.RecordPayment(adminActor(), RecordPaymentInput{StudentID: student.ID, LessonsPaid: 5, Amount: 10500})
	require.NoError(t, err)
	require.NotNil(t, payment.ExternalID)
	require.NotEmpty(t, *payment.ExternalID)
	require.True(t, *payment.ConfirmedByAdmin)
}

func TestPaymentsForStudentOrder(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	student := newStudent(t, db)

	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.CreatePayment(CreatePaymentInput{
			StudentID:   student.ID,
			LessonsPaid: i + 1,
			PaidAt:      base.AddDate(0, 0, i),
			Confirmed:   true,
		})
		require.NoError(t, err)
	}

	payments, err := store.PaymentsForStudent(student.ID)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	// Новые сверху.
	require.Equal(t, 3, payments[0].LessonsPaid)
	require.Equal(t, 1, payments[2].LessonsPaid)
}

func TestLessonsForTeacherPeriod(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	student := newStudent(t, db)
	teacher := newTeacher(t, db)

	october := time.Date(2025, 10, 10, 10, 0, 0, 0, time.UTC)
	november := time.Date(2025, 11, 10, 10, 0, 0, 0, time.UTC)
	newLesson(t, db, student.ID, teacher.ID, october, true)
	newLesson(t, db, student.ID, teacher.ID, november, false)

	from := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	lessons, err := store.LessonsForTeacher(teacher.ID, Period{From: &from})
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	require.Equal(t, november.Unix(), lessons[0].ScheduledAt.Unix())

	_, err = store.LessonsForTeacher(9999, Period{})
	require.Equal(t, KindNotFound, KindOf(err))
}
