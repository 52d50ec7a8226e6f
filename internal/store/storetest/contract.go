// Package storetest holds a behavioural test suite every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/store"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// RunContract exercises the store.Store contract against stores built by newStore.
func RunContract(t *testing.T, newStore Factory) {
	ctx := context.Background()

	open := func(t *testing.T) store.Store {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { s.Close() })
		return s
	}

	t.Run("create and fetch", func(t *testing.T) {
		s := open(t)

		var bookID, userID uint
		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			book := &entities.Book{Title: "Dune", Author: "Frank Herbert"}
			require.NoError(t, tx.CreateBook(book))
			user := &entities.User{Name: "Alice"}
			require.NoError(t, tx.CreateUser(user))
			bookID, userID = book.ID, user.ID
			return nil
		}))
		assert.NotZero(t, bookID)
		assert.NotZero(t, userID)

		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			book, err := tx.GetBookByID(bookID)
			require.NoError(t, err)
			assert.Equal(t, "Dune", book.Title)
			assert.Equal(t, "Frank Herbert", book.Author)
			assert.Nil(t, book.HolderID)
			assert.False(t, book.CreatedAt.IsZero())

			user, err := tx.GetUserByID(userID)
			require.NoError(t, err)
			assert.Equal(t, "Alice", user.Name)
			return nil
		}))
	})

	t.Run("missing records", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			_, err := tx.GetBookByID(404)
			assert.ErrorIs(t, err, store.ErrNotFound)

			_, err = tx.GetUserByID(404)
			assert.ErrorIs(t, err, store.ErrNotFound)

			assert.ErrorIs(t, tx.DeleteBook(404), store.ErrNotFound)
			assert.ErrorIs(t, tx.UpdateBook(&entities.Book{ID: 404, Title: "x"}), store.ErrNotFound)
			return nil
		}))
	})

	t.Run("update holder and clear it", func(t *testing.T) {
		s := open(t)

		book := &entities.Book{Title: "Dune"}
		user := &entities.User{Name: "Alice"}
		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.CreateUser(user))
			return tx.CreateBook(book)
		}))

		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			book.HolderID = &user.ID
			return tx.UpdateBook(book)
		}))

		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			got, err := tx.GetBookByID(book.ID)
			require.NoError(t, err)
			assert.True(t, got.IsHeldBy(user.ID))

			held, err := tx.GetBooksByHolder(user.ID)
			require.NoError(t, err)
			require.Len(t, held, 1)
			assert.Equal(t, book.ID, held[0].ID)

			got.HolderID = nil
			return tx.UpdateBook(got)
		}))

		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			got, err := tx.GetBookByID(book.ID)
			require.NoError(t, err)
			assert.True(t, got.IsAvailable())
			return nil
		}))
	})

	t.Run("holders are distinct and ordered", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			alice := &entities.User{Name: "Alice"}
			bob := &entities.User{Name: "Bob"}
			carol := &entities.User{Name: "Carol"}
			for _, u := range []*entities.User{alice, bob, carol} {
				require.NoError(t, tx.CreateUser(u))
			}
			for _, b := range []*entities.Book{
				{Title: "A", HolderID: &carol.ID},
				{Title: "B", HolderID: &carol.ID},
				{Title: "C", HolderID: &alice.ID},
				{Title: "D"},
			} {
				require.NoError(t, tx.CreateBook(b))
			}
			return nil
		}))

		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			holders, err := tx.GetHolders()
			require.NoError(t, err)
			require.Len(t, holders, 2)
			assert.Equal(t, "Alice", holders[0].Name)
			assert.Equal(t, "Carol", holders[1].Name)

			books, err := tx.GetAllBooks()
			require.NoError(t, err)
			require.Len(t, books, 4)
			for i := 1; i < len(books); i++ {
				assert.Less(t, books[i-1].ID, books[i].ID)
			}
			return nil
		}))
	})

	t.Run("unknown holder is rejected", func(t *testing.T) {
		s := open(t)

		err := s.Transaction(ctx, func(tx store.Tx) error {
			ghost := uint(99)
			return tx.CreateBook(&entities.Book{Title: "Dune", HolderID: &ghost})
		})
		assert.Error(t, err)
	})

	t.Run("rollback discards every write", func(t *testing.T) {
		s := open(t)
		boom := errors.New("boom")

		err := s.Transaction(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.CreateUser(&entities.User{Name: "Alice"}))
			require.NoError(t, tx.CreateBook(&entities.Book{Title: "Dune"}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			books, err := tx.GetAllBooks()
			require.NoError(t, err)
			assert.Empty(t, books)
			return nil
		}))
	})

	t.Run("deleted ids are not reused", func(t *testing.T) {
		s := open(t)

		first := &entities.Book{Title: "First"}
		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error { return tx.CreateBook(first) }))
		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error { return tx.DeleteBook(first.ID) }))

		second := &entities.Book{Title: "Second"}
		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error { return tx.CreateBook(second) }))
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("concurrent writers commit in turn", func(t *testing.T) {
		s := open(t)

		book := &entities.Book{Title: "Dune"}
		users := make([]*entities.User, 2)
		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			for i, name := range []string{"Alice", "Bob"} {
				users[i] = &entities.User{Name: name}
				require.NoError(t, tx.CreateUser(users[i]))
			}
			return tx.CreateBook(book)
		}))

		const writers = 20
		errs := make(chan error, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			holder := users[i%2].ID
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.Transaction(ctx, func(tx store.Tx) error {
					got, err := tx.GetBookByID(book.ID)
					if err != nil {
						return err
					}
					got.HolderID = &holder
					return tx.UpdateBook(got)
				})
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
			got, err := tx.GetBookByID(book.ID)
			require.NoError(t, err)
			require.NotNil(t, got.HolderID)
			assert.Contains(t, []uint{users[0].ID, users[1].ID}, *got.HolderID)
			return nil
		}))
	})

	t.Run("ping", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.Ping(ctx))
	})
}
