package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"listing_finder/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertListing(ctx context.Context, l domain.Listing) error {
	features, _ := json.Marshal(l.Features)
	if l.Features == nil {
		features = []byte("[]")
	}
	status := l.Status
	if status == "" {
		status = "for-sale"
	}
	_, err := r.db.ExecContext(ctx, upsertListingSQL,
		l.ID,
		l.Title,
		l.Location,
		valStr(l.Description),
		string(l.Price),
		l.Bedrooms,
		l.Bathrooms,
		string(features),
		valTime(l.ListedDate),
		valF64(l.Lat),
		valF64(l.Lon),
		string(l.Type),
		status,
		valInt(l.AreaSqft),
		valInt(l.YearBuilt),
		valStr(l.Image),
	)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, id int64, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, id, status, reason)
	return err
}

func (r *Repo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx, getListingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, err
}

func (r *Repo) ListListings(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, listListingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (domain.Listing, error) {
	var l domain.Listing
	var (
		desc, image     sql.NullString
		price, typ      string
		featuresJSON    []byte
		listed          sql.NullTime
		lat, lon        sql.NullFloat64
		area, yearBuilt sql.NullInt64
	)
	if err := s.Scan(
		&l.ID,
		&l.Title,
		&l.Location,
		&desc,
		&price,
		&l.Bedrooms,
		&l.Bathrooms,
		&featuresJSON,
		&listed,
		&lat, &lon,
		&typ,
		&l.Status,
		&area, &yearBuilt,
		&image,
	); err != nil {
		return domain.Listing{}, err
	}

	l.Price = domain.Price(price)
	l.Type = domain.ParsePropertyType(typ)
	if desc.Valid {
		l.Description = desc.String
	}
	if image.Valid {
		l.Image = image.String
	}
	if len(featuresJSON) > 0 {
		_ = json.Unmarshal(featuresJSON, &l.Features)
	}
	if listed.Valid {
		t := listed.Time.UTC()
		l.ListedDate = &t
	}
	if lat.Valid && lon.Valid {
		la, lo := lat.Float64, lon.Float64
		l.Lat, l.Lon = &la, &lo
	}
	if area.Valid {
		a := int(area.Int64)
		l.AreaSqft = &a
	}
	if yearBuilt.Valid {
		y := int(yearBuilt.Int64)
		l.YearBuilt = &y
	}
	if len(l.Features) == 0 {
		l.Features = nil
	}
	return l, nil
}
