package catalog

import (
	"context"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Search(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
