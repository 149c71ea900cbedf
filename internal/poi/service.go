package poi

import (
	"context"

	"backend-bandoxanh/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Stations(ctx context.Context) ([]Station, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, address, latitude, longitude, COALESCE(waste_types, '{}'), COALESCE(opening_hours, '')
		FROM stations
		ORDER BY id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query stations")
	}
	return collect(rows, func(row pgx.Rows) (Station, error) {
		var st Station
		err := row.Scan(&st.ID, &st.Name, &st.Address, &st.Latitude, &st.Longitude, &st.WasteTypes, &st.OpeningHours)
		return st, err
	})
}

func (s *Service) Events(ctx context.Context) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, address, latitude, longitude, event_date, event_time, COALESCE(organizer, ''), COALESCE(description, '')
		FROM events
		ORDER BY event_date, id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	return collect(rows, func(row pgx.Rows) (Event, error) {
		var ev Event
		err := row.Scan(&ev.ID, &ev.Name, &ev.Address, &ev.Latitude, &ev.Longitude, &ev.Date, &ev.Time, &ev.Organizer, &ev.Description)
		return ev, err
	})
}

func (s *Service) Bikes(ctx context.Context) ([]Bike, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, address, latitude, longitude, price_per_hour, available_bikes
		FROM bike_rentals
		ORDER BY id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query bike rentals")
	}
	return collect(rows, func(row pgx.Rows) (Bike, error) {
		var b Bike
		err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Latitude, &b.Longitude, &b.PricePerHour, &b.AvailableBikes)
		return b, err
	})
}

func (s *Service) Restaurants(ctx context.Context) ([]Restaurant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, address, latitude, longitude, COALESCE(cuisine, ''), COALESCE(green_practices, '{}')
		FROM restaurants
		ORDER BY id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query restaurants")
	}
	return collect(rows, func(row pgx.Rows) (Restaurant, error) {
		var r Restaurant
		err := row.Scan(&r.ID, &r.Name, &r.Address, &r.Latitude, &r.Longitude, &r.Cuisine, &r.GreenPractices)
		return r, err
	})
}

func (s *Service) Donations(ctx context.Context) ([]Donation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, address, latitude, longitude, COALESCE(accepted_items, '{}'), COALESCE(contact, '')
		FROM donation_points
		ORDER BY id
	`)
	if err != nil {
		return nil, errors.Wrap(err, "query donation points")
	}
	return collect(rows, func(row pgx.Rows) (Donation, error) {
		var d Donation
		err := row.Scan(&d.ID, &d.Name, &d.Address, &d.Latitude, &d.Longitude, &d.AcceptedItems, &d.Contact)
		return d, err
	})
}

// All loads the five lists. The first failing list aborts the load.
func (s *Service) All(ctx context.Context) (Lists, error) {
	var (
		l   Lists
		err error
	)
	if l.Stations, err = s.Stations(ctx); err != nil {
		return Lists{}, err
	}
	if l.Events, err = s.Events(ctx); err != nil {
		return Lists{}, err
	}
	if l.Bikes, err = s.Bikes(ctx); err != nil {
		return Lists{}, err
	}
	if l.Restaurants, err = s.Restaurants(ctx); err != nil {
		return Lists{}, err
	}
	if l.Donations, err = s.Donations(ctx); err != nil {
		return Lists{}, err
	}
	return l, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	results := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
