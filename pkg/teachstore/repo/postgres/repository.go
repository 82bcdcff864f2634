// Package postgres provides a teachstore.Repository backed by PostgreSQL
// through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edustack/teachstore/pkg/teachstore"
)

// DBTX allows the repository to run against either a connection pool or a
// transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements teachstore.Repository using PostgreSQL.
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New creates a repository over an existing connection or transaction.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a repository over a connection pool. Multi-statement
// operations run inside a transaction.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// uniqueViolation maps a unique-constraint violation to the matching domain
// sentinel by constraint name.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "sha256"):
		return teachstore.ErrBlobExists
	case strings.Contains(pgErr.ConstraintName, "username"):
		return teachstore.ErrUsernameTaken
	default:
		return fmt.Errorf("duplicate entry: %s", pgErr.ConstraintName)
	}
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *teachstore.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, role_id, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.PasswordHash, int(user.RoleID),
		user.Avatar, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if mapped := uniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

const userColumns = `id, username, password_hash, role_id, avatar, created_at, updated_at`

func scanUser(row pgx.Row) (*teachstore.User, error) {
	var user teachstore.User
	var roleID int
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &roleID,
		&user.Avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.RoleID = teachstore.Role(roleID)
	return &user, nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*teachstore.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, teachstore.ErrUserNotFound
	}
	return user, err
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*teachstore.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, teachstore.ErrUserNotFound
	}
	return user, err
}

func (r *Repository) ListUsers(ctx context.Context) ([]*teachstore.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*teachstore.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teachstore.ErrUserNotFound
	}
	return nil
}

func (r *Repository) ListRoles(ctx context.Context) ([]*teachstore.RoleInfo, error) {
	rows, err := r.db.Query(ctx, `SELECT id, display_name FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []*teachstore.RoleInfo
	for rows.Next() {
		var role teachstore.RoleInfo
		var id int
		if err := rows.Scan(&id, &role.DisplayName); err != nil {
			return nil, err
		}
		role.ID = teachstore.Role(id)
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}

// Blob operations

func (r *Repository) CreateBlob(ctx context.Context, blob *teachstore.Blob) error {
	query := `
		INSERT INTO blobs (id, file_name, path, mime_type, size_bytes, sha256,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		blob.ID, blob.FileName, blob.Path, blob.MimeType, blob.SizeBytes,
		blob.SHA256, blob.CreatedBy, blob.CreatedAt, blob.UpdatedAt)
	if err != nil {
		if mapped := uniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("create blob: %w", err)
	}
	return nil
}

const blobColumns = `id, file_name, path, mime_type, size_bytes, sha256, created_by, created_at, updated_at`

func scanBlob(row pgx.Row) (*teachstore.Blob, error) {
	var blob teachstore.Blob
	err := row.Scan(&blob.ID, &blob.FileName, &blob.Path, &blob.MimeType,
		&blob.SizeBytes, &blob.SHA256, &blob.CreatedBy, &blob.CreatedAt, &blob.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

func (r *Repository) GetBlob(ctx context.Context, id uuid.UUID) (*teachstore.Blob, error) {
	blob, err := scanBlob(r.db.QueryRow(ctx,
		`SELECT `+blobColumns+` FROM blobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, teachstore.ErrBlobNotFound
	}
	return blob, err
}

func (r *Repository) GetBlobBySHA256(ctx context.Context, sum string) (*teachstore.Blob, error) {
	blob, err := scanBlob(r.db.QueryRow(ctx,
		`SELECT `+blobColumns+` FROM blobs WHERE sha256 = $1`, sum))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, teachstore.ErrBlobNotFound
	}
	return blob, err
}

func (r *Repository) DeleteBlob(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teachstore.ErrBlobNotFound
	}
	return nil
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *teachstore.Category) error {
	query := `
		INSERT INTO categories (id, display_name, parent_id, created_by, updated_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		category.ID, category.DisplayName, category.ParentID,
		category.CreatedBy, category.UpdatedBy, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

const categoryColumns = `id, display_name, parent_id, created_by, updated_by, created_at, updated_at`

func scanCategory(row pgx.Row) (*teachstore.Category, error) {
	var category teachstore.Category
	err := row.Scan(&category.ID, &category.DisplayName, &category.ParentID,
		&category.CreatedBy, &category.UpdatedBy, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*teachstore.Category, error) {
	category, err := scanCategory(r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, teachstore.ErrCategoryNotFound
	}
	return category, err
}

func (r *Repository) ListCategories(ctx context.Context) ([]*teachstore.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*teachstore.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, category *teachstore.Category) error {
	query := `
		UPDATE categories SET
			display_name = $2, parent_id = $3, updated_by = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		category.ID, category.DisplayName, category.ParentID,
		category.UpdatedBy, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teachstore.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategories deletes the nodes in the given order inside one
// transaction when a pool is available.
func (r *Repository) DeleteCategories(ctx context.Context, ids []uuid.UUID) error {
	if r.pool != nil {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback(ctx)

		if err := deleteCategories(ctx, tx, ids); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}
	return deleteCategories(ctx, r.db, ids)
}

func deleteCategories(ctx context.Context, db DBTX, ids []uuid.UUID) error {
	for _, id := range ids {
		tag, err := db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return teachstore.ErrCategoryNotFound
		}
	}
	return nil
}

// Material operations

func (r *Repository) CreateMaterial(ctx context.Context, material *teachstore.Material) error {
	query := `
		INSERT INTO materials (id, display_name, category_ids, material_type, blob_id,
			content, publish_status, description, cover, created_by, updated_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		material.ID, material.DisplayName, teachstore.JoinCategoryIDs(material.CategoryIDs),
		string(material.Type), material.BlobID, material.Content,
		string(material.PublishStatus), material.Description, material.Cover,
		material.CreatedBy, material.UpdatedBy, material.CreatedAt, material.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

const materialColumns = `id, display_name, category_ids, material_type, blob_id, content,
	publish_status, description, cover, created_by, updated_by, created_at, updated_at`

func scanMaterial(row pgx.Row) (*teachstore.Material, error) {
	var material teachstore.Material
	var categoryIDs, materialType, publishStatus string
	err := row.Scan(&material.ID, &material.DisplayName, &categoryIDs, &materialType,
		&material.BlobID, &material.Content, &publishStatus, &material.Description,
		&material.Cover, &material.CreatedBy, &material.UpdatedBy,
		&material.CreatedAt, &material.UpdatedAt)
	if err != nil {
		return nil, err
	}
	material.Type = teachstore.MaterialType(materialType)
	material.PublishStatus = teachstore.PublishStatus(publishStatus)
	material.CategoryIDs, err = teachstore.SplitCategoryIDs(categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("bad category_ids column: %w", err)
	}
	return &material, nil
}

func (r *Repository) GetMaterial(ctx context.Context, id uuid.UUID) (*teachstore.Material, error) {
	material, err := scanMaterial(r.db.QueryRow(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, teachstore.ErrMaterialNotFound
	}
	return material, err
}

func (r *Repository) UpdateMaterial(ctx context.Context, material *teachstore.Material) error {
	query := `
		UPDATE materials SET
			display_name = $2, category_ids = $3, blob_id = $4, content = $5,
			publish_status = $6, description = $7, cover = $8, updated_by = $9,
			updated_at = $10
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		material.ID, material.DisplayName, teachstore.JoinCategoryIDs(material.CategoryIDs),
		material.BlobID, material.Content, string(material.PublishStatus),
		material.Description, material.Cover, material.UpdatedBy, material.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teachstore.ErrMaterialNotFound
	}
	return nil
}

func (r *Repository) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return teachstore.ErrMaterialNotFound
	}
	return nil
}

func (r *Repository) ListMaterials(ctx context.Context, filter teachstore.MaterialFilter) ([]*teachstore.Material, int, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.DisplayName != "" {
		add(`display_name ILIKE '%%' || $%d || '%%'`, filter.DisplayName)
	}
	if filter.Description != "" {
		add(`description ILIKE '%%' || $%d || '%%'`, filter.Description)
	}
	if filter.Type != "" {
		add(`material_type = $%d`, string(filter.Type))
	}
	if len(filter.CategoryIDs) > 0 {
		// Membership test against the delimited category-id set.
		wanted := make([]string, len(filter.CategoryIDs))
		for i, id := range filter.CategoryIDs {
			wanted[i] = id.String()
		}
		add(`string_to_array(category_ids, ',') && $%d::text[]`, wanted)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM materials`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}

	query := `SELECT ` + materialColumns + ` FROM materials` + where +
		` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var materials []*teachstore.Material
	for rows.Next() {
		material, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, err
		}
		materials = append(materials, material)
	}
	return materials, total, rows.Err()
}
