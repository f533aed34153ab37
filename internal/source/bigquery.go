package source

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"tourdesk/pkg/models"
)

// BigQueryLoader reads each source from a table of the same name in one
// dataset. Some agencies mirror the gateway sheets into BigQuery nightly;
// this loader lets the engine run against that mirror. Every cell is
// stringified since the engine treats all cells as untyped text anyway.
type BigQueryLoader struct {
	client  *bigquery.Client
	dataset string
}

func NewBigQueryLoader(ctx context.Context, projectID, dataset string) (*BigQueryLoader, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &BigQueryLoader{client: client, dataset: dataset}, nil
}

func (l *BigQueryLoader) Close() error {
	return l.client.Close()
}

func (l *BigQueryLoader) Services() []models.Service {
	return models.AllServices()
}

func (l *BigQueryLoader) Load(ctx context.Context, svc models.Service) (*models.Table, error) {
	q := l.client.Query(fmt.Sprintf("SELECT * FROM `%s.%s`", l.dataset, svc))
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("bigquery read %s: %w", svc, err)
	}

	t := &models.Table{Service: svc}
	for {
		var vals []bigquery.Value
		err := it.Next(&vals)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bigquery scan %s: %w", svc, err)
		}

		if t.Headers == nil {
			for _, f := range it.Schema {
				t.Headers = append(t.Headers, f.Name)
			}
		}

		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = stringify(v)
		}
		t.Rows = append(t.Rows, row)
	}

	// Empty tables never iterate, so grab headers from the schema directly.
	if t.Headers == nil {
		for _, f := range it.Schema {
			t.Headers = append(t.Headers, f.Name)
		}
	}
	return t, nil
}

func stringify(v bigquery.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *big.Rat:
		return x.FloatString(2)
	case civil.Date:
		return x.String()
	case time.Time:
		return x.Format("2006-01-02 15:04")
	default:
		return fmt.Sprint(x)
	}
}
