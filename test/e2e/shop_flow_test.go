package e2e

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/inkpress/printdesk/internal/handlers"
	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/internal/repository"
	"github.com/inkpress/printdesk/internal/services"
	"github.com/inkpress/printdesk/pkg/pg"
	"github.com/inkpress/printdesk/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB = pg.DB

type TestEnvironment struct {
	DB                 *pg.DB
	Redis              *miniredis.Miniredis
	RedisAdapter       redis.RedisAdapter
	TransactionRepo    *repository.TransactionRepository
	OrderRepo          *repository.OrderRepository
	TransactionService *services.TransactionService
	OrderService       *services.OrderService
	ReportService      *services.ReportService
	ImportService      *services.ImportService
	TransactionHandler *handlers.TransactionHandler
	OrderHandler       *handlers.OrderHandler
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.TransactionHeaderEntity{},
		&repository.TransactionItemEntity{},
		&repository.OrderRequestEntity{},
		&repository.OrderItemEntity{},
	)
	require.NoError(t, err)

	pgDB := &testDB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	redisAdapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	transactionRepo := repository.NewTransactionRepository(pgDB)
	orderRepo := repository.NewOrderRepository(pgDB)

	transactionService := services.NewTransactionService(transactionRepo, redisAdapter)
	orderService := services.NewOrderService(orderRepo, transactionRepo, redisAdapter)
	reportService := services.NewReportService(transactionRepo, redisAdapter, time.Minute)
	importService := services.NewImportService(transactionRepo, redisAdapter)

	return &TestEnvironment{
		DB:                 pgDB,
		Redis:              mr,
		RedisAdapter:       redisAdapter,
		TransactionRepo:    transactionRepo,
		OrderRepo:          orderRepo,
		TransactionService: transactionService,
		OrderService:       orderService,
		ReportService:      reportService,
		ImportService:      importService,
		TransactionHandler: handlers.NewTransactionHandler(transactionService),
		OrderHandler:       handlers.NewOrderHandler(orderService),
	}
}

func (env *TestEnvironment) Cleanup() {
	if env.Redis != nil {
		env.Redis.Close()
	}
}

func lineItem(paperType, color string, pages int, price int64) model.LineItem {
	p := decimal.NewFromInt(price)
	return model.LineItem{
		PaperType:    paperType,
		Color:        color,
		Pages:        pages,
		PricePerPage: p,
		Total:        p.Mul(decimal.NewFromInt(int64(pages))),
	}
}

func TestE2E_PointOfSaleFlow(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	header, err := env.TransactionService.Record(ctx, []model.LineItem{
		lineItem("Short", "Black", 10, 2),
		lineItem("A4", "Colored", 3, 5),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, header.ID)
	assert.True(t, header.Total.Equal(decimal.NewFromInt(35)))

	rows, err := env.TransactionService.Records(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, header.ID, r.TransactionID)
	}

	summary, err := env.ReportService.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, summary.TodayIncome.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, 13, summary.TotalPages)
	assert.Equal(t, 1, summary.NumTransactions)
	assert.Equal(t, 10, summary.ShortPages)
	assert.Equal(t, 3, summary.ColoredPages)
}

func TestE2E_SummaryCacheInvalidation(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	_, err := env.TransactionService.Record(ctx, []model.LineItem{lineItem("Short", "Black", 5, 2)})
	require.NoError(t, err)

	first, err := env.ReportService.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, first.TodayIncome.Equal(decimal.NewFromInt(10)))

	// a new sale drops the cached summary, so the next read sees it
	_, err = env.TransactionService.Record(ctx, []model.LineItem{lineItem("Long", "Black", 5, 3)})
	require.NoError(t, err)

	second, err := env.ReportService.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, second.TodayIncome.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 2, second.NumTransactions)
}

func TestE2E_OrderLifecycle(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	created, err := env.OrderService.Submit(ctx, model.OrderCreateRequest{
		CustomerName: "Elena",
		FileName:     "flyers.pdf",
		FileURL:      "https://files.example.com/flyers.pdf",
		Note:         "laminated",
		Items: []model.LineItem{
			lineItem("A4", "Black", 50, 5),
			lineItem("PhotoPaper", "Colored", 4, 20),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, created.Status)

	orders, pagination, err := env.OrderService.List(ctx, model.OrderStatusPending, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(1), pagination.TotalItems)

	txnID, err := env.OrderService.Process(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, txnID)

	// the order's items were mirrored into a real transaction
	rows, err := env.TransactionService.Records(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	total := decimal.Zero
	for _, r := range rows {
		assert.Equal(t, txnID, r.TransactionID)
		total = total.Add(r.Total)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(330)))

	processed, err := env.OrderRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessed, processed.Status)

	// a second process attempt is refused
	_, err = env.OrderService.Process(ctx, created.ID)
	assert.ErrorIs(t, err, services.ErrOrderAlreadyProcessed)
}

func TestE2E_RejectThenProcess(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	created, err := env.OrderService.Submit(ctx, model.OrderCreateRequest{
		CustomerName: "Ben",
		FileName:     "poster.pdf",
		Items:        []model.LineItem{lineItem("PhotoPaper", "Colored", 2, 20)},
	})
	require.NoError(t, err)

	require.NoError(t, env.OrderService.Reject(ctx, created.ID))

	rejected, err := env.OrderRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusRejected, rejected.Status)

	assert.ErrorIs(t, env.OrderService.Reject(ctx, created.ID), services.ErrOrderAlreadyRejected)

	// the shop can still change its mind and fulfill a rejected order
	txnID, err := env.OrderService.Process(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, txnID)
}

func TestE2E_ResetLeavesOrders(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	_, err := env.TransactionService.Record(ctx, []model.LineItem{lineItem("Short", "Black", 1, 2)})
	require.NoError(t, err)

	created, err := env.OrderService.Submit(ctx, model.OrderCreateRequest{
		CustomerName: "Cara",
		FileName:     "notes.pdf",
		Items:        []model.LineItem{lineItem("A4", "Black", 5, 5)},
	})
	require.NoError(t, err)

	require.NoError(t, env.TransactionService.Reset(ctx))

	rows, err := env.TransactionService.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	still, err := env.OrderRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, still.Status)
}

func TestE2E_LegacyImport(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "records.csv")
	content := "transactionId,date,time,paperType,color,pages,pricePerPage,itemTotal\n" +
		"TRX-LEG-1,03/14/2025,09:30AM,Short,Black,10,2.00,20.00\n" +
		"TRX-LEG-1,03/14/2025,09:30AM,A4,Colored,3,5.00,15.00\n" +
		"TRX-LEG-2,03/15/2025,1:05pm,Long,Black,2,3.00,6.00\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	migrated, err := env.ImportService.Import(ctx, csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, migrated)

	rows, err := env.TransactionService.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// re-running the migration imports nothing new
	migrated, err = env.ImportService.Import(ctx, csvPath)
	require.NoError(t, err)
	assert.Zero(t, migrated)

	from := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	report, err := env.ReportService.Range(ctx, from, to, 1)
	require.NoError(t, err)
	assert.Len(t, report.Records, 2)
	assert.True(t, report.Summary.TotalSales.Equal(decimal.RequireFromString("35.00")))
}
