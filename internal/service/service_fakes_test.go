package service

import (
	"context"
	"sort"

	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/repository/contract"
	"ai-canvas-be/internal/repository/specification"
	"ai-canvas-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory repositories interpreting the subset of specifications the
// services actually use.

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	clone := *user
	r.users[user.Id] = &clone
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	clone := *user
	r.users[user.Id] = &clone
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.users {
		if userMatches(u, specs) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if userMatches(u, specs) {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) DecrementCredits(ctx context.Context, userId uuid.UUID, amount int) (int, bool, error) {
	u, ok := r.users[userId]
	if !ok || u.AiCredits < amount {
		return 0, false, nil
	}
	u.AiCredits -= amount
	return u.AiCredits, true, nil
}

func (r *fakeUserRepo) IncrementCredits(ctx context.Context, userId uuid.UUID, amount int) (int, error) {
	u, ok := r.users[userId]
	if !ok {
		return 0, nil
	}
	u.AiCredits += amount
	return u.AiCredits, nil
}

func userMatches(u *entity.User, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if u.Id != sp.ID {
				return false
			}
		case specification.ByEmail:
			if u.Email != sp.Email {
				return false
			}
		}
	}
	return true
}

type fakeCanvasRepo struct {
	canvases map[uuid.UUID]*entity.Canvas
	updates  int
}

func newFakeCanvasRepo() *fakeCanvasRepo {
	return &fakeCanvasRepo{canvases: make(map[uuid.UUID]*entity.Canvas)}
}

func (r *fakeCanvasRepo) Create(ctx context.Context, canvas *entity.Canvas) error {
	clone := *canvas
	r.canvases[canvas.Id] = &clone
	return nil
}

func (r *fakeCanvasRepo) Update(ctx context.Context, canvas *entity.Canvas) error {
	clone := *canvas
	r.canvases[canvas.Id] = &clone
	r.updates++
	return nil
}

func (r *fakeCanvasRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.canvases, id)
	return nil
}

func (r *fakeCanvasRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Canvas, error) {
	for _, c := range r.canvases {
		if canvasMatches(c, specs) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeCanvasRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Canvas, error) {
	var out []*entity.Canvas
	for _, c := range r.canvases {
		if canvasMatches(c, specs) {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCanvasRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func canvasMatches(c *entity.Canvas, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if c.Id != sp.ID {
				return false
			}
		case specification.CanvasOwnedByUser:
			if c.UserId != sp.UserID {
				return false
			}
		case specification.FavoritesOnly:
			if !c.IsFavorite {
				return false
			}
		}
	}
	return true
}

type fakeCreditTxRepo struct {
	txs []*entity.AiCreditTransaction
}

func (r *fakeCreditTxRepo) Create(ctx context.Context, tx *entity.AiCreditTransaction) error {
	clone := *tx
	r.txs = append(r.txs, &clone)
	return nil
}

func (r *fakeCreditTxRepo) Update(ctx context.Context, tx *entity.AiCreditTransaction) error {
	for i, existing := range r.txs {
		if existing.Id == tx.Id {
			clone := *tx
			r.txs[i] = &clone
			return nil
		}
	}
	return nil
}

func (r *fakeCreditTxRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AiCreditTransaction, error) {
	for _, tx := range r.txs {
		if txMatches(tx, specs) {
			clone := *tx
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeCreditTxRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AiCreditTransaction, error) {
	var out []*entity.AiCreditTransaction
	for _, tx := range r.txs {
		if txMatches(tx, specs) {
			clone := *tx
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeCreditTxRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func txMatches(tx *entity.AiCreditTransaction, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if tx.Id != sp.ID {
				return false
			}
		case specification.FilterBy:
			if sp.Field == "user_id" && tx.UserId != sp.Value.(uuid.UUID) {
				return false
			}
		}
	}
	return true
}

type fakeUow struct {
	users    *fakeUserRepo
	canvases *fakeCanvasRepo
	credits  *fakeCreditTxRepo
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository { return u.users }
func (u *fakeUow) CanvasRepository() contract.CanvasRepository {
	return u.canvases
}
func (u *fakeUow) CreditTransactionRepository() contract.CreditTransactionRepository {
	return u.credits
}

type fakeFactory struct {
	uow *fakeUow
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: &fakeUow{
		users:    newFakeUserRepo(),
		canvases: newFakeCanvasRepo(),
		credits:  &fakeCreditTxRepo{},
	}}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}
