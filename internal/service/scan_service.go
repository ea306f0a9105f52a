package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const scanKeyPrefix = "scan:session:"

// scanEntryTTL bounds how long an undelivered scan waits for a consumer.
const scanEntryTTL = 2 * time.Minute

// ErrNoScan is returned when Await times out with nothing scanned.
var ErrNoScan = errors.New("no barcode scanned")

// ScanService relays barcodes from a companion scanner (typically a phone
// camera) to the POS terminal. Each session has its own Redis list: the
// scanner LPUSHes, the terminal long-polls with BRPOP.
type ScanService interface {
	Push(ctx context.Context, sessionID uuid.UUID, barcode string) error
	Await(ctx context.Context, sessionID uuid.UUID, timeout time.Duration) (string, error)
}

type scanService struct {
	rdb *redis.Client
}

func NewScanService(rdb *redis.Client) ScanService {
	return &scanService{rdb: rdb}
}

func (s *scanService) Push(ctx context.Context, sessionID uuid.UUID, barcode string) error {
	if barcode == "" {
		return errors.New("empty barcode")
	}
	key := scanKeyPrefix + sessionID.String()
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, barcode)
	pipe.Expire(ctx, key, scanEntryTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *scanService) Await(ctx context.Context, sessionID uuid.UUID, timeout time.Duration) (string, error) {
	key := scanKeyPrefix + sessionID.String()
	result, err := s.rdb.BRPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoScan
		}
		return "", err
	}
	if len(result) < 2 {
		return "", ErrNoScan
	}
	return result[1], nil
}
