package services

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/pkg/logger"
	"github.com/inkpress/printdesk/pkg/prom"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrImportFileNotFound = errors.New("legacy records file not found")
)

// Legacy export columns:
// transactionId, date (MM/DD/YYYY), time (HH:MMam/pm), paperType, color,
// pages, pricePerPage, itemTotal. First row is a header.
const (
	legacyFieldCount = 8
	legacyDateLayout = "01/02/2006"
)

type ImportRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, h *model.TransactionHeader) (*model.TransactionHeader, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ImportService struct {
	repo  ImportRepository
	cache Cache
}

func NewImportService(repo ImportRepository, cache Cache) *ImportService {
	return &ImportService{
		repo:  repo,
		cache: cache,
	}
}

// Import loads the legacy CSV at path. Transactions already present in the
// store are skipped, making re-runs idempotent; everything new is inserted
// in a single unit of work, so a storage failure anywhere rolls back the
// whole run. Returns the count of newly migrated transactions.
func (s *ImportService) Import(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrImportFileNotFound
		}
		return 0, errors.Wrap(err, "open legacy records file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	// header row
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "read legacy records file")
	}

	var ids []string
	groups := make(map[string][][]string)
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, errors.Wrap(err, "read legacy records file")
		}
		if len(row) < legacyFieldCount {
			logger.Warn("skipping malformed legacy row", "fields", len(row), "row", strings.Join(row, ","))
			continue
		}
		id := row[0]
		if _, ok := groups[id]; !ok {
			ids = append(ids, id)
		}
		groups[id] = append(groups[id], row)
	}

	migrated := 0
	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			exists, err := s.repo.Exists(ctx, id)
			if err != nil {
				return err
			}
			if exists {
				logger.Info("skipping existing transaction header", "id", id)
				continue
			}

			header, err := legacyHeader(id, groups[id])
			if err != nil {
				return err
			}
			if _, err := s.repo.Create(ctx, header); err != nil {
				return err
			}
			migrated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if migrated > 0 {
		invalidateSummary(s.cache)
		prom.AddCounter(prom.SystemSales, prom.MetricMigratedTransactions, float64(migrated))
	}
	return migrated, nil
}

func legacyHeader(id string, rows [][]string) (*model.TransactionHeader, error) {
	date, err := time.Parse(legacyDateLayout, rows[0][1])
	if err != nil {
		return nil, errors.Wrapf(err, "transaction %s: bad date %q", id, rows[0][1])
	}
	tod, err := parseLegacyTime(rows[0][2])
	if err != nil {
		return nil, errors.Wrapf(err, "transaction %s: bad time %q", id, rows[0][2])
	}

	header := &model.TransactionHeader{
		ID:   id,
		Date: date,
		Time: tod,
	}

	// Unparsable item totals contribute zero instead of aborting the run.
	total := decimal.Zero
	for _, row := range rows {
		itemTotal, err := decimal.NewFromString(row[7])
		if err != nil {
			logger.Warn("legacy row with unparsable total treated as zero", "id", id, "value", row[7])
			itemTotal = decimal.Zero
		}
		total = total.Add(itemTotal)

		pages, err := strconv.Atoi(row[5])
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s: bad page count %q", id, row[5])
		}
		price, err := decimal.NewFromString(row[6])
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s: bad price %q", id, row[6])
		}

		header.Items = append(header.Items, model.TransactionItem{
			PaperType:    row[3],
			Color:        row[4],
			Pages:        pages,
			PricePerPage: price,
			Total:        itemTotal,
		})
	}
	header.Total = total

	return header, nil
}

// parseLegacyTime accepts "02:05PM" and "2:05pm" style values.
func parseLegacyTime(s string) (time.Time, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	t, err := time.Parse("03:04PM", v)
	if err != nil {
		t, err = time.Parse("3:04PM", v)
	}
	return t, err
}
