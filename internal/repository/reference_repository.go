package repository

import (
	"context"

	"github.com/locvowork/employee_management_sample/ems/internal/domain"
)

func (r *employeeRepository) GetJobTitles(ctx context.Context) (map[int]string, error) {
	return r.lookup(ctx, "GetJobTitles", "job_titles", "job_title_id", "job_title")
}

func (r *employeeRepository) GetDivisions(ctx context.Context) (map[int]string, error) {
	return r.lookup(ctx, "GetDivisions", "division", "id", "name")
}

func (r *employeeRepository) GetCities(ctx context.Context) ([]domain.City, error) {
	rows, err := r.namedRows(ctx, "GetCities", "city", "city_id", "name_of_city")
	if err != nil {
		return nil, err
	}
	cities := make([]domain.City, 0, len(rows))
	for _, row := range rows {
		cities = append(cities, domain.City{ID: row.id, Name: row.name})
	}
	return cities, nil
}

func (r *employeeRepository) GetStates(ctx context.Context) ([]domain.State, error) {
	rows, err := r.namedRows(ctx, "GetStates", "state", "state_id", "name_of_state")
	if err != nil {
		return nil, err
	}
	states := make([]domain.State, 0, len(rows))
	for _, row := range rows {
		states = append(states, domain.State{ID: row.id, Name: row.name})
	}
	return states, nil
}

type namedRow struct {
	id   int
	name string
}

func (r *employeeRepository) lookup(ctx context.Context, op, table, idCol, nameCol string) (map[int]string, error) {
	rows, err := r.namedRows(ctx, op, table, idCol, nameCol)
	if err != nil {
		return nil, err
	}
	out := make(map[int]string, len(rows))
	for _, row := range rows {
		out[row.id] = row.name
	}
	return out, nil
}

// namedRows reads (id, name) pairs of a reference table ordered by name.
func (r *employeeRepository) namedRows(ctx context.Context, op, table, idCol, nameCol string) ([]namedRow, error) {
	query, args := r.qb().
		Select(idCol, nameCol).
		From(table).
		OrderBy(nameCol).
		OrderBy(idCol).
		Build()

	var out []namedRow
	err := r.withConn(ctx, op, func(q querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var row namedRow
			if err := rows.Scan(&row.id, &row.name); err != nil {
				return err
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
