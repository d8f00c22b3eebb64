package services

import (
	"fmt"
	"time"

	"finance-reporting/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

const (
	revenueShare     = 0.40
	paidShare        = 0.75
	defaultUserPool  = 20
	businessHourFrom = 8
	businessHourTo   = 20
)

type transactionGenerator struct {
	faker    *gofakeit.Faker
	userPool int
}

// NewTransactionGenerator creates a generator. The same seed yields the same dataset.
func NewTransactionGenerator(seed uint64) TransactionGeneratorInterface {
	return &transactionGenerator{
		faker:    gofakeit.New(seed),
		userPool: defaultUserPool,
	}
}

// Generate produces count records with sequential ids spread over [startDate, endDate)
func (g *transactionGenerator) Generate(count int, startDate, endDate time.Time) []models.Transaction {
	if count <= 0 {
		return []models.Transaction{}
	}

	users := g.GenerateUsers(g.userPool)
	profiles := make(map[string]string, len(users))
	for _, user := range users {
		profiles[user] = g.profileURL()
	}

	transactions := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		category := models.CategoryExpense
		if g.faker.Float64() < revenueShare {
			category = models.CategoryRevenue
		}

		status := models.StatusPending
		if g.faker.Float64() < paidShare {
			status = models.StatusPaid
		}

		user := g.faker.RandomString(users)

		transactions = append(transactions, models.Transaction{
			ID:          int64(i + 1),
			Date:        g.GenerateTimestamp(startDate, endDate),
			Amount:      g.GenerateAmount(category),
			Category:    category,
			Status:      status,
			UserID:      user,
			UserProfile: profiles[user],
		})
	}

	return transactions
}

// GenerateUsers returns count stable user ids of the form user_001
func (g *transactionGenerator) GenerateUsers(count int) []string {
	users := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		users = append(users, fmt.Sprintf("user_%03d", i))
	}
	return users
}

// GenerateAmount draws an amount in the range typical for the category
func (g *transactionGenerator) GenerateAmount(category string) decimal.Decimal {
	minValue, maxValue := 10.00, 1500.00
	if category == models.CategoryRevenue {
		minValue, maxValue = 100.00, 5000.00
	}
	return decimal.NewFromFloat(g.faker.Float64Range(minValue, maxValue)).Round(2)
}

// GenerateTimestamp picks a UTC instant within the range, during business hours
func (g *transactionGenerator) GenerateTimestamp(startDate, endDate time.Time) time.Time {
	if !endDate.After(startDate) {
		return startDate.UTC()
	}

	day := g.faker.DateRange(startDate, endDate).UTC()
	ts := time.Date(day.Year(), day.Month(), day.Day(),
		g.faker.IntRange(businessHourFrom, businessHourTo-1),
		g.faker.IntRange(0, 59),
		g.faker.IntRange(0, 59),
		0, time.UTC)

	if ts.Before(startDate) {
		return startDate.UTC()
	}
	if !ts.Before(endDate) {
		return day
	}
	return ts
}

func (g *transactionGenerator) profileURL() string {
	gender := g.faker.RandomString([]string{"men", "women"})
	return fmt.Sprintf("https://randomuser.me/api/portraits/%s/%d.jpg", gender, g.faker.IntRange(1, 99))
}
