package mapper

import (
	"ai-canvas-be/internal/entity"
	"ai-canvas-be/internal/model"
)

type CreditTransactionMapper struct{}

func NewCreditTransactionMapper() *CreditTransactionMapper {
	return &CreditTransactionMapper{}
}

func (m *CreditTransactionMapper) ToEntity(t *model.AiCreditTransaction) *entity.AiCreditTransaction {
	if t == nil {
		return nil
	}
	return &entity.AiCreditTransaction{
		Id:              t.Id,
		UserId:          t.UserId,
		TransactionType: entity.CreditTransactionType(t.TransactionType),
		Amount:          t.Amount,
		ServiceUsed:     t.ServiceUsed,
		RelatedId:       t.RelatedId,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *CreditTransactionMapper) ToModel(t *entity.AiCreditTransaction) *model.AiCreditTransaction {
	if t == nil {
		return nil
	}
	return &model.AiCreditTransaction{
		Id:              t.Id,
		UserId:          t.UserId,
		TransactionType: string(t.TransactionType),
		Amount:          t.Amount,
		ServiceUsed:     t.ServiceUsed,
		RelatedId:       t.RelatedId,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *CreditTransactionMapper) ToEntities(txs []*model.AiCreditTransaction) []*entity.AiCreditTransaction {
	entities := make([]*entity.AiCreditTransaction, len(txs))
	for i, t := range txs {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
