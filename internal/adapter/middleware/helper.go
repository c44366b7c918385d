package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// buildKey scopes a request id to one caller and one concrete URL path, so
// the same id sent to /loans/1/fund and /loans/2/fund are separate operations.
func buildKey(method, urlPath string, caller common.Address, requestID string) string {
	urlPath = "/" + strings.Trim(urlPath, "/")
	return "idemp:ax:" + strings.ToLower(method) + ":" + urlPath + ":" +
		strings.ToLower(caller.Hex()) + ":" + strings.ToLower(requestID)
}

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

func validReqID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseCaller returns the caller or a client-facing error message.
func parseCaller(raw string) (common.Address, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return common.Address{}, "missing " + HeaderCaller
	}
	if !strings.HasPrefix(raw, "0x") || !common.IsHexAddress(raw) {
		return common.Address{}, "invalid " + HeaderCaller
	}
	a := common.HexToAddress(raw)
	if a == (common.Address{}) {
		return common.Address{}, "invalid " + HeaderCaller
	}
	return a, ""
}

// parseAxRequestAt takes epoch seconds, epoch milliseconds, or RFC3339
// (optionally with fractional seconds) carrying a zone. Naive local times
// are rejected.
func parseAxRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing Ax-Request-At")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("Ax-Request-At must be epoch (s/ms) or RFC3339 with timezone")
}

// idempStore keeps one entry per key: an in-progress marker first, then
// the final response.
type idempStore struct {
	rdb redis.UniversalClient
}

// lock reports false when the key already exists.
func (s idempStore) lock(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func (s idempStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(v, &e)
	return e, err
}

func (s idempStore) save(ctx context.Context, key string, e idempEntry, ttl time.Duration) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, ttl).Err()
}

func (s idempStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
