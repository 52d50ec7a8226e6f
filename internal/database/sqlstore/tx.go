package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/store"
)

type txRepository struct {
	ctx     context.Context
	tx      *sqlx.Tx
	dialect goqu.DialectWrapper

	// returning is set for dialects that report generated ids via RETURNING
	// instead of LastInsertId.
	returning bool
}

func holderValue(holderID *uint) any {
	if holderID == nil {
		return nil
	}
	return int64(*holderID)
}

func (r *txRepository) insert(table string, row goqu.Record) (uint, error) {
	ds := r.dialect.Insert(table).Rows(row).Prepared(true)

	if r.returning {
		query, args, err := ds.Returning(colID).ToSQL()
		if err != nil {
			return 0, fmt.Errorf("failed to build insert: %w", err)
		}
		var id int64
		if err := r.tx.QueryRowxContext(r.ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return uint(id), nil
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}
	result, err := r.tx.ExecContext(r.ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (r *txRepository) exec(ds interface {
	ToSQL() (string, []any, error)
}) (int64, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build statement: %w", err)
	}
	result, err := r.tx.ExecContext(r.ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *txRepository) get(dest any, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return r.tx.GetContext(r.ctx, dest, query, args...)
}

func (r *txRepository) selectAll(dest any, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return r.tx.SelectContext(r.ctx, dest, query, args...)
}

func (r *txRepository) CreateBook(book *entities.Book) error {
	now := time.Now().UTC()
	id, err := r.insert(tableBooks, goqu.Record{
		colTitle:     book.Title,
		colAuthor:    book.Author,
		colHolderID:  holderValue(book.HolderID),
		colCreatedAt: now,
		colUpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}
	book.ID = id
	book.CreatedAt = now
	book.UpdatedAt = now
	return nil
}

func (r *txRepository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.get(&book, r.dialect.From(tableBooks).Select(bookColumns...).Where(goqu.C(colID).Eq(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *txRepository) UpdateBook(book *entities.Book) error {
	now := time.Now().UTC()
	affected, err := r.exec(r.dialect.Update(tableBooks).Prepared(true).Set(goqu.Record{
		colTitle:     book.Title,
		colAuthor:    book.Author,
		colHolderID:  holderValue(book.HolderID),
		colUpdatedAt: now,
	}).Where(goqu.C(colID).Eq(book.ID)))
	if err != nil {
		return fmt.Errorf("failed to update book %d: %w", book.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("book %d: %w", book.ID, store.ErrNotFound)
	}
	book.UpdatedAt = now
	return nil
}

func (r *txRepository) DeleteBook(id uint) error {
	affected, err := r.exec(r.dialect.Delete(tableBooks).Prepared(true).Where(goqu.C(colID).Eq(id)))
	if err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("book %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (r *txRepository) GetAllBooks() ([]entities.Book, error) {
	books := []entities.Book{}
	err := r.selectAll(&books, r.dialect.From(tableBooks).Select(bookColumns...).Order(goqu.C(colID).Asc()))
	return books, err
}

func (r *txRepository) GetBooksByHolder(userID uint) ([]entities.Book, error) {
	books := []entities.Book{}
	err := r.selectAll(&books, r.dialect.From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C(colHolderID).Eq(userID)).
		Order(goqu.C(colID).Asc()))
	return books, err
}

func (r *txRepository) CreateUser(user *entities.User) error {
	now := time.Now().UTC()
	id, err := r.insert(tableUsers, goqu.Record{
		colName:      user.Name,
		colCreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

func (r *txRepository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.get(&user, r.dialect.From(tableUsers).Select(userColumns...).Where(goqu.C(colID).Eq(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *txRepository) GetHolders() ([]entities.User, error) {
	holders := r.dialect.From(tableBooks).Select(colHolderID).Where(goqu.C(colHolderID).IsNotNull())

	users := []entities.User{}
	err := r.selectAll(&users, r.dialect.From(tableUsers).
		Select(userColumns...).
		Where(goqu.C(colID).In(holders)).
		Order(goqu.C(colID).Asc()))
	return users, err
}

var _ store.Tx = (*txRepository)(nil)
