package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookcycle/bookcycle-backend/internal/models"
	repo "github.com/bookcycle/bookcycle-backend/internal/repository"
	"github.com/bookcycle/bookcycle-backend/internal/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userCols = `id, name, email, password_hash, role, institution, reward_points,
	address_line1, address_line2, city, state, postal_code, country, phone,
	is_active, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Institution,
		&u.RewardPoints, &u.Address.Line1, &u.Address.Line2, &u.Address.City,
		&u.Address.State, &u.Address.PostalCode, &u.Address.Country, &u.Phone,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Address.Country == "" {
		u.Address.Country = "IN"
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users(id, name, email, password_hash, role, institution,
		   address_line1, address_line2, city, state, postal_code, country, phone)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Institution,
		u.Address.Line1, u.Address.Line2, u.Address.City, u.Address.State,
		u.Address.PostalCode, u.Address.Country, u.Phone,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, services.ErrEmailTaken
		}
		return models.User{}, err
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email=lower($1)`, email))
}

func (r *usersRepo) List(ctx context.Context, f repo.UserFilter) ([]models.User, int, error) {
	where := []string{"true"}
	args := []any{}
	if f.Role != "" {
		args = append(args, f.Role)
		where = append(where, fmt.Sprintf("role=$%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.pool.Query(ctx,
		`SELECT `+userCols+` FROM users WHERE `+cond+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *usersRepo) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	out, _, err := r.List(ctx, repo.UserFilter{Role: string(role), Page: 1, Limit: 1000})
	return out, err
}

func (r *usersRepo) Update(ctx context.Context, u models.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name=$2, email=$3, role=$4, institution=$5, reward_points=$6,
		   address_line1=$7, address_line2=$8, city=$9, state=$10, postal_code=$11,
		   country=$12, phone=$13, is_active=$14, updated_at=now()
		 WHERE id=$1`,
		u.ID, u.Name, u.Email, u.Role, u.Institution, u.RewardPoints,
		u.Address.Line1, u.Address.Line2, u.Address.City, u.Address.State,
		u.Address.PostalCode, u.Address.Country, u.Phone, u.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return services.ErrEmailTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (r *usersRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}
