package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	UserKeyPrefix              = "user:%d"
	CategoriesKey              = "catalog:categories"
	TopSellersKeyPrefix        = "catalog:top:%d:%d"
	SearchKeyPrefix            = "catalog:search:%s"
	BannerImpressionsKeyPrefix = "banner:%d:impressions"

	catalogPattern = "catalog:*"
)

const (
	UserTTL       = 5 * time.Minute
	CategoriesTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func TopSellersKey(limit, offset int) string {
	return fmt.Sprintf(TopSellersKeyPrefix, limit, offset)
}

// SearchKey builds a key from an already canonical query fingerprint.
func SearchKey(fingerprint string) string {
	return fmt.Sprintf(SearchKeyPrefix, fingerprint)
}

func BannerImpressionsKey(bannerID uint) string {
	return fmt.Sprintf(BannerImpressionsKeyPrefix, bannerID)
}

// family reduces a key to its first segment for metric labels.
func family(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) >= 2 && parts[0] == "catalog" {
		return parts[0] + "_" + parts[1]
	}
	return parts[0]
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateCatalog drops every cached search, top sellers page and the category list.
func InvalidateCatalog(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, catalogPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.WarnContext(ctx, "catalog cache scan failed", slog.String("error", err.Error()))
		return
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
