package service

import (
	"context"
	"errors"
	"strings"

	"stationers/internal/domain"
	"stationers/internal/repository"
)

// ProductService инкапсулирует бизнес-логику вокруг товаров
type ProductService struct {
	repo repository.ProductRepository
	tx   repository.TxManager
}

func NewProductService(repo repository.ProductRepository, tx repository.TxManager) *ProductService {
	return &ProductService{repo: repo, tx: tx}
}

var ErrInvalidInput = errors.New("invalid input")

func validProduct(p domain.Product) bool {
	return strings.TrimSpace(p.Name) != "" && p.Category.Valid() && p.Price >= 0 && p.StockQuantity >= 0
}

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if !validProduct(p) {
		return nil, ErrInvalidInput
	}
	cp := p
	cp.ID = 0
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID <= 0 || !validProduct(p) {
		return nil, ErrInvalidInput
	}
	cp := p
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// List все товары, либо товары одной категории
func (s *ProductService) List(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	if category != "" && !category.Valid() {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, repository.ProductFilter{Category: category})
}

// Seed заполняет каталог стартовым набором, если он пуст. Повторный вызов ничего не меняет.
func (s *ProductService) Seed(ctx context.Context) (int, error) {
	created := 0
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := s.repo.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, p := range SeedCatalog() {
			if err := s.repo.Create(ctx, &p); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
