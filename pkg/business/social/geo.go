package social

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ShopDistance 是一条附近商铺检索结果。
type ShopDistance struct {
	ShopID int64
	// Meters 与检索点的距离（米）。
	Meters float64
}

// AddShopLocation 把商铺坐标写入其类型的 geo 索引。
func (s *Service) AddShopLocation(ctx context.Context, typeID, shopID int64, lng, lat float64) error {
	key := s.opts.GeoKeyPrefix + strconv.FormatInt(typeID, 10)
	if err := s.client.GeoAdd(ctx, key, &redis.GeoLocation{
		Name:      strconv.FormatInt(shopID, 10),
		Longitude: lng,
		Latitude:  lat,
	}).Err(); err != nil {
		return fmt.Errorf("social: add shop location: %w", err)
	}
	return nil
}

// NearbyShops 按距离升序分页返回检索点周边的商铺。
//
// radiusMeters 为检索半径；from/count 为偏移分页，Redis 侧只能
// 限制返回总量，偏移截取在本地完成。超出结果集的页返回空。
func (s *Service) NearbyShops(ctx context.Context, typeID int64, lng, lat, radiusMeters float64, from, count int) ([]ShopDistance, error) {
	if count <= 0 {
		return nil, nil
	}
	if from < 0 {
		from = 0
	}

	key := s.opts.GeoKeyPrefix + strconv.FormatInt(typeID, 10)
	locations, err := s.client.GeoRadius(ctx, key, lng, lat, &redis.GeoRadiusQuery{
		Radius:   radiusMeters,
		Unit:     "m",
		WithDist: true,
		Count:    from + count,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("social: search nearby shops: %w", err)
	}
	if len(locations) <= from {
		return nil, nil
	}

	out := make([]ShopDistance, 0, count)
	for _, loc := range locations[from:] {
		id, parseErr := strconv.ParseInt(loc.Name, 10, 64)
		if parseErr != nil {
			return nil, fmt.Errorf("social: corrupt geo member %q: %w", loc.Name, parseErr)
		}
		out = append(out, ShopDistance{ShopID: id, Meters: loc.Dist})
	}
	return out, nil
}
