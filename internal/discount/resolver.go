// Package discount resolves discount codes against durable storage, with an
// optional redis read-through cache in front of it.
package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/logx"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/ariefcatur/go-pos-tables/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Source interface {
	ReadDiscountByCode(ctx context.Context, code string) (orders.Discount, error)
}

type Resolver struct {
	src   Source
	cache *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

type Option func(*Resolver)

// WithCache puts rdb in front of the store. Cache failures are logged and
// fall through to the store.
func WithCache(rdb *redis.Client, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = rdb
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func NewResolver(src Source, opts ...Option) *Resolver {
	r := &Resolver{src: src, ttl: redisx.TTLDiscount, log: logx.Component("discount")}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Lookup finds a discount by exact code. Misses are not cached.
func (r *Resolver) Lookup(ctx context.Context, code string) (orders.Discount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return orders.Discount{}, fmt.Errorf("%w: empty discount code", orders.ErrInvalidInput)
	}

	key := fmt.Sprintf(redisx.KeyDiscountCode, code)
	if r.cache != nil {
		var d orders.Discount
		found, err := redisx.GetJSON(ctx, r.cache, key, &d)
		if err != nil {
			r.log.Warn().Err(err).Str("code", code).Msg("discount cache read failed")
		} else if found {
			return d, nil
		}
	}

	d, err := r.src.ReadDiscountByCode(ctx, code)
	if errors.Is(err, orders.ErrDiscountNotFound) {
		return orders.Discount{}, fmt.Errorf("%w: %s", orders.ErrDiscountNotFound, code)
	}
	if err != nil {
		return orders.Discount{}, orders.WrapPersistence("read discount", err)
	}

	if r.cache != nil {
		if err := redisx.SetJSON(ctx, r.cache, key, d, r.ttl); err != nil {
			r.log.Warn().Err(err).Str("code", code).Msg("discount cache write failed")
		}
	}
	return d, nil
}

// Invalidate drops a cached code, e.g. after the discount was edited.
func (r *Resolver) Invalidate(ctx context.Context, code string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, fmt.Sprintf(redisx.KeyDiscountCode, code)).Err()
}
