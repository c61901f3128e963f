package services

import (
	"github.com/google/uuid"
	"github.com/groupledger/backend/pkg/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/groupledger/backend/internal/models"
)

// AnalyticsService is the read side of the ledger: balances, period totals
// with trend percentages, and grouped breakdowns. It issues aggregate queries
// only and never writes.
type AnalyticsService struct {
	DB *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db}
}

// TotalWithTrend pairs a period total with its relative change versus the
// immediately preceding window of equal length.
type TotalWithTrend struct {
	Amount             decimal.Decimal `json:"amount"`
	PercentageIncrease decimal.Decimal `json:"percentageIncrease"`
}

type CategoryBreakdownRow struct {
	CategoryID uuid.UUID       `json:"categoryID"`
	Title      string          `json:"title"`
	IconURL    string          `json:"iconURL"`
	ColorCode  string          `json:"colorCode"`
	Amount     decimal.Decimal `json:"amount"`
}

type DayBreakdownRow struct {
	Day    string          `json:"day"`
	Amount decimal.Decimal `json:"amount"`
}

type MemberBreakdownRow struct {
	UserID    uuid.UUID       `json:"userID"`
	Email     string          `json:"email"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Amount    decimal.Decimal `json:"amount"`
}

// Balance is replenishments minus expenses over the user's whole ledger,
// zero when either side has no rows.
func (s *AnalyticsService) Balance(userID uuid.UUID) (decimal.Decimal, error) {
	income, err := s.sumAmount(s.DB.Model(&models.Replenishment{}).Where("user_id = ?", userID))
	if err != nil {
		return decimal.Zero, err
	}
	spent, err := s.sumAmount(s.DB.Model(&models.Expense{}).Where("user_id = ?", userID))
	if err != nil {
		return decimal.Zero, err
	}
	return income.Sub(spent), nil
}

// UserExpenseTotal sums the caller's expenses across all groups for the
// period and compares against the preceding window.
func (s *AnalyticsService) UserExpenseTotal(userID uuid.UUID, period utils.Period) (TotalWithTrend, error) {
	return s.expenseTotal("user_id = ?", userID, period)
}

// GroupExpenseTotal sums every member's expenses inside one group.
func (s *AnalyticsService) GroupExpenseTotal(groupID uuid.UUID, period utils.Period) (TotalWithTrend, error) {
	return s.expenseTotal("group_id = ?", groupID, period)
}

func (s *AnalyticsService) expenseTotal(scope string, scopeID uuid.UUID, period utils.Period) (TotalWithTrend, error) {
	current, err := s.sumAmount(s.scopedExpenses(scope, scopeID, period))
	if err != nil {
		return TotalWithTrend{}, err
	}

	result := TotalWithTrend{Amount: current, PercentageIncrease: decimal.Zero}
	if period.IsZero() {
		// All-time totals have no preceding window to compare against.
		return result, nil
	}

	previous, err := s.sumAmount(s.scopedExpenses(scope, scopeID, period.Previous()))
	if err != nil {
		return TotalWithTrend{}, err
	}
	if !previous.IsZero() {
		result.PercentageIncrease = current.Sub(previous).Div(previous)
	}
	return result, nil
}

// GroupByCategory returns per-category sums for a group, carrying each
// category's per-group icon and color. Categories without expenses in the
// period still appear with amount 0.
func (s *AnalyticsService) GroupByCategory(groupID uuid.UUID, period utils.Period) ([]CategoryBreakdownRow, error) {
	join := "LEFT JOIN expenses ON expenses.group_id = category_groups.group_id AND expenses.category_id = category_groups.category_id"
	args := []interface{}{}
	if from, to, ok := period.Bounds(); ok {
		join += " AND expenses.time >= ? AND expenses.time < ?"
		args = append(args, from, to)
	}

	var rows []CategoryBreakdownRow
	err := s.DB.Table("category_groups").
		Select("category_groups.category_id AS category_id, categories.title AS title, category_groups.icon_url AS icon_url, category_groups.color_code AS color_code, COALESCE(SUM(expenses.amount), 0) AS amount").
		Joins("JOIN categories ON categories.id = category_groups.category_id").
		Joins(join, args...).
		Where("category_groups.group_id = ?", groupID).
		Group("category_groups.category_id, categories.title, category_groups.icon_url, category_groups.color_code").
		Order("amount DESC, category_groups.category_id ASC").
		Scan(&rows).Error
	return rows, err
}

// GroupByDay returns per-calendar-day sums for a group's expenses.
func (s *AnalyticsService) GroupByDay(groupID uuid.UUID, period utils.Period) ([]DayBreakdownRow, error) {
	query := s.scopedExpenses("group_id = ?", groupID, period)

	var rows []DayBreakdownRow
	err := query.
		Select("DATE(expenses.time) AS day, COALESCE(SUM(expenses.amount), 0) AS amount").
		Group("DATE(expenses.time)").
		Order("amount DESC, day ASC").
		Scan(&rows).Error
	return rows, err
}

// GroupByMember returns per-member sums joined against the roster, so
// members without expenses in the period still appear with amount 0.
func (s *AnalyticsService) GroupByMember(groupID uuid.UUID, period utils.Period) ([]MemberBreakdownRow, error) {
	join := "LEFT JOIN expenses ON expenses.group_id = memberships.group_id AND expenses.user_id = memberships.user_id"
	args := []interface{}{}
	if from, to, ok := period.Bounds(); ok {
		join += " AND expenses.time >= ? AND expenses.time < ?"
		args = append(args, from, to)
	}

	var rows []MemberBreakdownRow
	err := s.DB.Table("memberships").
		Select("memberships.user_id AS user_id, users.email AS email, users.first_name AS first_name, users.last_name AS last_name, COALESCE(SUM(expenses.amount), 0) AS amount").
		Joins("JOIN users ON users.id = memberships.user_id").
		Joins(join, args...).
		Where("memberships.group_id = ?", groupID).
		Group("memberships.user_id, users.email, users.first_name, users.last_name").
		Order("amount DESC, memberships.user_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (s *AnalyticsService) scopedExpenses(scope string, scopeID uuid.UUID, period utils.Period) *gorm.DB {
	query := s.DB.Model(&models.Expense{}).Where(scope, scopeID)
	if from, to, ok := period.Bounds(); ok {
		query = query.Where("time >= ? AND time < ?", from, to)
	}
	return query
}

func (s *AnalyticsService) sumAmount(query *gorm.DB) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := query.Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
