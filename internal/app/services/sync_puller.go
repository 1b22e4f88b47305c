package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/ports"
)

// SimulatedPuller stands in for provider APIs. It returns 1-100 records per
// pull and advances an offset cursor of the form "<provider>:<offset>".
type SimulatedPuller struct {
	// Records overrides the random page size when positive.
	Records int
}

// Pull returns the next simulated page after job.Cursor.
func (p SimulatedPuller) Pull(ctx context.Context, job domain.SyncJob) (ports.PullResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.PullResult{}, err
	}
	records := p.Records
	if records <= 0 {
		records = 1 + rand.IntN(100)
	}
	offset := cursorOffset(job.Cursor) + int64(records)
	return ports.PullResult{
		Records: records,
		Cursor:  fmt.Sprintf("%s:%012d", job.ProviderKey, offset),
	}, nil
}

func cursorOffset(cursor *string) int64 {
	if cursor == nil {
		return 0
	}
	idx := strings.LastIndexByte(*cursor, ':')
	if idx < 0 {
		return 0
	}
	offset, err := strconv.ParseInt((*cursor)[idx+1:], 10, 64)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
