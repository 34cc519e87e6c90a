package categorizer

import (
	"context"

	"fjacquet/receipt-ledger/internal/models"
)

// fakeAIClient records calls and answers through the configured funcs.
type fakeAIClient struct {
	InferFunc    func(ctx context.Context, q InferenceQuery) (Inference, error)
	PassbookFunc func(ctx context.Context, q InferenceQuery) (Inference, error)
	Calls        int
	LastQuery    InferenceQuery
}

func (f *fakeAIClient) InferAccountTitle(ctx context.Context, q InferenceQuery) (Inference, error) {
	f.Calls++
	f.LastQuery = q
	if f.InferFunc != nil {
		return f.InferFunc(ctx, q)
	}
	return Inference{AccountTitle: q.Masters[0].Title}, nil
}

func (f *fakeAIClient) InferPassbookAccount(ctx context.Context, q InferenceQuery) (Inference, error) {
	f.Calls++
	f.LastQuery = q
	if f.PassbookFunc != nil {
		return f.PassbookFunc(ctx, q)
	}
	return Inference{AccountTitle: q.Masters[0].Title, TaxCategory: models.TaxCodeOutOfScope}, nil
}

func testMasters() []models.AccountMaster {
	return []models.AccountMaster{
		{Title: "消耗品費", Keywords: "文具, 日用品"},
		{Title: "会議費", Keywords: "カフェ"},
		{Title: "旅費交通費"},
		{Title: "売上高"},
	}
}
