package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"watch-catalog/internal/domain"
)

// MemberRepository define el contrato de persistencia para miembros.
// Las lecturas por defecto no incluyen credenciales ni google_id; las
// variantes WithCredentials las piden de forma explícita.
type MemberRepository interface {
	Create(ctx context.Context, member domain.Member) (domain.Member, error)
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByIDWithCredentials(ctx context.Context, id string) (domain.Member, error)
	GetByEmail(ctx context.Context, email string) (domain.Member, error)
	GetByEmailWithCredentials(ctx context.Context, email string) (domain.Member, error)
	GetByFederatedID(ctx context.Context, googleID string) (domain.Member, error)
	GetBySessionToken(ctx context.Context, token string) (domain.Member, error)
	UpdateSessionToken(ctx context.Context, id, token string) error
	UpdatePassword(ctx context.Context, id, passwordHash, salt string) error
	UpdateProfile(ctx context.Context, member domain.Member) (domain.Member, error)
	Delete(ctx context.Context, id string) (domain.Member, error)
	List(ctx context.Context, filter MemberFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter MemberFilter) (int64, error)
}

// MemberFilter refleja los query params de GET /members.
type MemberFilter struct {
	MembernameLike string
	EmailLike      string
	YOB            *int
	ID             string
	Sort           Sort
}

var memberSortColumns = map[string]string{
	"_id":        "id",
	"membername": "membername",
	"email":      "email",
	"YOB":        "yob",
	"isAdmin":    "is_admin",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

const (
	memberColumns     = `id, membername, email, yob, is_admin, created_at, updated_at`
	memberCredColumns = memberColumns + `, google_id, password_hash, salt, session_token`
)

// PgMemberRepository implementa MemberRepository usando pgxpool.
type PgMemberRepository struct {
	pool querier
}

func NewPgMemberRepository(pool *pgxpool.Pool) *PgMemberRepository {
	return &PgMemberRepository{pool: pool}
}

func (r *PgMemberRepository) Create(ctx context.Context, member domain.Member) (domain.Member, error) {
	const query = `
		INSERT INTO members (id, membername, email, yob, google_id, is_admin, password_hash, salt, session_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	var password, salt, token *string
	if a := member.Authentication; a != nil {
		password, salt, token = nullable(a.Password), nullable(a.Salt), nullable(a.SessionToken)
	}

	_, err := r.pool.Exec(ctx, query,
		member.ID,
		member.Membername,
		member.Email,
		member.YOB,
		nullable(member.GoogleID),
		member.IsAdmin,
		password,
		salt,
		token,
		now,
	)
	if err != nil {
		return domain.Member{}, err
	}
	return member, nil
}

func (r *PgMemberRepository) GetByID(ctx context.Context, id string) (domain.Member, error) {
	return r.getOne(ctx, memberColumns, `id = $1`, id)
}

func (r *PgMemberRepository) GetByIDWithCredentials(ctx context.Context, id string) (domain.Member, error) {
	return r.getOne(ctx, memberCredColumns, `id = $1`, id)
}

// GetByEmail devuelve el miembro más antiguo con ese email.
func (r *PgMemberRepository) GetByEmail(ctx context.Context, email string) (domain.Member, error) {
	return r.getOne(ctx, memberColumns, `email = $1`, email)
}

func (r *PgMemberRepository) GetByEmailWithCredentials(ctx context.Context, email string) (domain.Member, error) {
	return r.getOne(ctx, memberCredColumns, `email = $1`, email)
}

func (r *PgMemberRepository) GetByFederatedID(ctx context.Context, googleID string) (domain.Member, error) {
	return r.getOne(ctx, memberCredColumns, `google_id = $1`, googleID)
}

func (r *PgMemberRepository) GetBySessionToken(ctx context.Context, token string) (domain.Member, error) {
	return r.getOne(ctx, memberColumns, `session_token = $1`, token)
}

func (r *PgMemberRepository) UpdateSessionToken(ctx context.Context, id, token string) error {
	const query = `UPDATE members SET session_token = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, token)
}

func (r *PgMemberRepository) UpdatePassword(ctx context.Context, id, passwordHash, salt string) error {
	const query = `UPDATE members SET password_hash = $2, salt = $3, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, passwordHash, salt)
}

func (r *PgMemberRepository) UpdateProfile(ctx context.Context, member domain.Member) (domain.Member, error) {
	query := `
		UPDATE members SET membername = $2, yob = $3, is_admin = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + memberColumns
	return scanMember(r.pool.QueryRow(ctx, query, member.ID, member.Membername, member.YOB, member.IsAdmin), false)
}

func (r *PgMemberRepository) Delete(ctx context.Context, id string) (domain.Member, error) {
	query := `DELETE FROM members WHERE id = $1 RETURNING ` + memberColumns
	return scanMember(r.pool.QueryRow(ctx, query, id), false)
}

func (r *PgMemberRepository) List(ctx context.Context, filter MemberFilter) ([]domain.Member, error) {
	where := memberWhere(filter)
	query := `SELECT ` + memberColumns + ` FROM members` + where.sql() +
		orderBy(filter.Sort, memberSortColumns, "created_at ASC")

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows, false)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PgMemberRepository) Count(ctx context.Context, filter MemberFilter) (int64, error) {
	where := memberWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM members`+where.sql(), where.args...).Scan(&total)
	return total, err
}

func (r *PgMemberRepository) getOne(ctx context.Context, columns, cond string, arg any) (domain.Member, error) {
	query := `SELECT ` + columns + ` FROM members WHERE ` + cond + ` ORDER BY created_at ASC LIMIT 1`
	return scanMember(r.pool.QueryRow(ctx, query, arg), columns == memberCredColumns)
}

func (r *PgMemberRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func memberWhere(f MemberFilter) *whereBuilder {
	b := &whereBuilder{}
	if f.MembernameLike != "" {
		b.addLike("membername", f.MembernameLike)
	}
	if f.EmailLike != "" {
		b.addLike("email", f.EmailLike)
	}
	if f.YOB != nil {
		b.add("yob = $%d", *f.YOB)
	}
	if f.ID != "" {
		b.add("id = $%d", f.ID)
	}
	return b
}

func scanMember(row pgx.Row, withCredentials bool) (domain.Member, error) {
	var (
		m   domain.Member
		yob *int
	)
	dest := []any{&m.ID, &m.Membername, &m.Email, &yob, &m.IsAdmin, &m.CreatedAt, &m.UpdatedAt}

	var googleID, password, salt, token *string
	if withCredentials {
		dest = append(dest, &googleID, &password, &salt, &token)
	}
	if err := row.Scan(dest...); err != nil {
		return domain.Member{}, err
	}
	if yob != nil {
		m.YOB = *yob
	}
	if withCredentials {
		m.GoogleID = deref(googleID)
		if password != nil || salt != nil || token != nil {
			m.Authentication = &domain.Authentication{
				Password:     deref(password),
				Salt:         deref(salt),
				SessionToken: deref(token),
			}
		}
	}
	return m, nil
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
