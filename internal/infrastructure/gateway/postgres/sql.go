package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/gateway/pgerr"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// classify maps driver failures onto the usecase taxonomy. Unknown errors
// pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pgerr.Classify(string(pqErr.Code), pqErr.Message+" "+pqErr.Detail, &pgerr.StoreError{
			Code:    string(pqErr.Code),
			Message: pqErr.Message,
			Details: pqErr.Detail,
			Hint:    pqErr.Hint,
		})
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
	}
	return err
}
