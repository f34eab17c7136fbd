// src/services/transaction_service.go
package services

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/username/centavo/backend/src/model"
	"github.com/username/centavo/backend/src/models"
)

const defaultPageSize = 100

type transactionServiceImpl struct {
	store       *model.TransactionStore
	reportCache *cache.Cache
}

func NewTransactionService(store *model.TransactionStore, reportCache *cache.Cache) TransactionService {
	return &transactionServiceImpl{
		store:       store,
		reportCache: reportCache,
	}
}

// ListUserTransactions returns one page of the user's history, newest first.
// The default first page is cached per user; other pages go to storage.
func (s *transactionServiceImpl) ListUserTransactions(userID int64, skip, take int) ([]models.Transaction, error) {
	if take <= 0 {
		take = defaultPageSize
	}

	firstPage := skip == 0 && take == defaultPageSize
	cacheKey := fmt.Sprintf(ckUserTransactions, userID)
	if firstPage {
		if cached, found := s.reportCache.Get(cacheKey); found {
			return cached.([]models.Transaction), nil
		}
	}

	transactions, err := s.store.ListByUser(userID, skip, take)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	if firstPage {
		s.reportCache.Set(cacheKey, transactions, DefaultCacheExpiration)
	}
	return transactions, nil
}

func (s *transactionServiceImpl) GetTransactionByID(id, userID int64) (*models.Transaction, error) {
	return s.store.GetByID(id, userID)
}

func (s *transactionServiceImpl) ListCategories() ([]models.Category, error) {
	categories, err := s.store.ListCategories()
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *transactionServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckUserTransactions, userID))
}
