package repository

import (
	"context"
	"fmt"

	"github.com/davranaff/coffee/internal/model"
	"github.com/davranaff/coffee/internal/server"
	"github.com/jackc/pgx/v5"
)

// TIME columns are exchanged as "HH:MM" text.
const (
	locationColumns = `id, name, address, city, postal_code, phone, email, description, latitude, longitude,
		is_active, to_char(opening_time, 'HH24:MI') AS opening_time, to_char(closing_time, 'HH24:MI') AS closing_time,
		created_at, updated_at`
	staticInfoColumns = `id, key, value, description, created_at, updated_at`
)

type InfoRepository struct {
	server *server.Server
}

func NewInfoRepository(s *server.Server) *InfoRepository {
	return &InfoRepository{server: s}
}

// ---- locations ----

func (r *InfoRepository) getLocation(ctx context.Context, stmt string, args pgx.NamedArgs) (*model.CoffeeShopLocation, error) {
	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute location query: %w", err)
	}

	location, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.CoffeeShopLocation])
	if err != nil {
		return nil, notFound("coffee_shop_locations", err)
	}
	return &location, nil
}

// ListActiveLocations returns active locations, optionally limited to one
// city (compared case-insensitively).
func (r *InfoRepository) ListActiveLocations(ctx context.Context, city string) ([]model.CoffeeShopLocation, error) {
	stmt := `
		SELECT ` + locationColumns + ` FROM coffee_shop_locations
		WHERE is_active AND (@city = '' OR lower(city) = lower(@city))
		ORDER BY city, name, id`

	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, pgx.NamedArgs{"city": city})
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	locations, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.CoffeeShopLocation])
	if err != nil {
		return nil, fmt.Errorf("failed to collect locations: %w", err)
	}
	return locations, nil
}

func (r *InfoRepository) GetLocation(ctx context.Context, id int64) (*model.CoffeeShopLocation, error) {
	stmt := `SELECT ` + locationColumns + ` FROM coffee_shop_locations WHERE id = @id`
	return r.getLocation(ctx, stmt, pgx.NamedArgs{"id": id})
}

func (r *InfoRepository) CreateLocation(ctx context.Context, req *model.CreateLocationRequest) (*model.CoffeeShopLocation, error) {
	stmt := `
		INSERT INTO coffee_shop_locations (
			name, address, city, postal_code, phone, email, description,
			latitude, longitude, is_active, opening_time, closing_time
		) VALUES (
			@name, @address, @city, @postal_code, @phone, @email, @description,
			@latitude, @longitude, COALESCE(@is_active, TRUE), @opening_time::time, @closing_time::time
		)
		RETURNING ` + locationColumns

	return r.getLocation(ctx, stmt, pgx.NamedArgs{
		"name":         req.Name,
		"address":      req.Address,
		"city":         req.City,
		"postal_code":  req.PostalCode,
		"phone":        req.Phone,
		"email":        req.Email,
		"description":  req.Description,
		"latitude":     req.Latitude,
		"longitude":    req.Longitude,
		"is_active":    req.IsActive,
		"opening_time": req.OpeningTime,
		"closing_time": req.ClosingTime,
	})
}

func (r *InfoRepository) UpdateLocation(ctx context.Context, req *model.UpdateLocationRequest) (*model.CoffeeShopLocation, error) {
	stmt := `
		UPDATE coffee_shop_locations SET
			name = COALESCE(@name, name),
			address = COALESCE(@address, address),
			city = COALESCE(@city, city),
			postal_code = COALESCE(@postal_code, postal_code),
			phone = COALESCE(@phone, phone),
			email = COALESCE(@email, email),
			description = COALESCE(@description, description),
			latitude = COALESCE(@latitude::double precision, latitude),
			longitude = COALESCE(@longitude::double precision, longitude),
			is_active = COALESCE(@is_active::boolean, is_active),
			opening_time = COALESCE(@opening_time::time, opening_time),
			closing_time = COALESCE(@closing_time::time, closing_time)
		WHERE id = @id
		RETURNING ` + locationColumns

	return r.getLocation(ctx, stmt, pgx.NamedArgs{
		"id":           req.ID,
		"name":         req.Name,
		"address":      req.Address,
		"city":         req.City,
		"postal_code":  req.PostalCode,
		"phone":        req.Phone,
		"email":        req.Email,
		"description":  req.Description,
		"latitude":     req.Latitude,
		"longitude":    req.Longitude,
		"is_active":    req.IsActive,
		"opening_time": req.OpeningTime,
		"closing_time": req.ClosingTime,
	})
}

// ---- static info ----

func (r *InfoRepository) getStaticInfo(ctx context.Context, stmt string, args pgx.NamedArgs) (*model.StaticInfo, error) {
	rows, err := r.server.DB.Conn(ctx).Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute static info query: %w", err)
	}

	info, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.StaticInfo])
	if err != nil {
		return nil, notFound("static_info", err)
	}
	return &info, nil
}

func (r *InfoRepository) ListStaticInfo(ctx context.Context) ([]model.StaticInfo, error) {
	rows, err := r.server.DB.Conn(ctx).Query(ctx, `SELECT `+staticInfoColumns+` FROM static_info ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list static info: %w", err)
	}

	infos, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.StaticInfo])
	if err != nil {
		return nil, fmt.Errorf("failed to collect static info: %w", err)
	}
	return infos, nil
}

func (r *InfoRepository) GetStaticInfo(ctx context.Context, key string) (*model.StaticInfo, error) {
	return r.getStaticInfo(ctx, `SELECT `+staticInfoColumns+` FROM static_info WHERE key = @key`, pgx.NamedArgs{"key": key})
}

func (r *InfoRepository) CreateStaticInfo(ctx context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error) {
	stmt := `
		INSERT INTO static_info (key, value, description)
		VALUES (@key, @value, @description)
		RETURNING ` + staticInfoColumns

	return r.getStaticInfo(ctx, stmt, pgx.NamedArgs{
		"key":         req.Key,
		"value":       req.Value,
		"description": req.Description,
	})
}

// UpsertStaticInfo inserts or replaces the value stored under key.
func (r *InfoRepository) UpsertStaticInfo(ctx context.Context, req *model.CreateStaticInfoRequest) (*model.StaticInfo, error) {
	stmt := `
		INSERT INTO static_info (key, value, description)
		VALUES (@key, @value, @description)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, description = EXCLUDED.description
		RETURNING ` + staticInfoColumns

	return r.getStaticInfo(ctx, stmt, pgx.NamedArgs{
		"key":         req.Key,
		"value":       req.Value,
		"description": req.Description,
	})
}

func (r *InfoRepository) UpdateStaticInfo(ctx context.Context, req *model.UpdateStaticInfoRequest) (*model.StaticInfo, error) {
	stmt := `
		UPDATE static_info SET
			value = COALESCE(@value, value),
			description = COALESCE(@description, description)
		WHERE key = @key
		RETURNING ` + staticInfoColumns

	return r.getStaticInfo(ctx, stmt, pgx.NamedArgs{
		"key":         req.Key,
		"value":       req.Value,
		"description": req.Description,
	})
}
