package catalog

import (
	"context"
	"fmt"
)

func (s *service) GetCatalogMap(ctx context.Context) ([]MapCategory, error) {
	var out []MapCategory
	err := s.store.Snapshot(ctx, func(view Store) error {
		categories, err := view.ListCategories(ctx)
		if err != nil {
			return err
		}

		out = make([]MapCategory, 0, len(categories))
		for _, c := range categories {
			node, err := mapCategory(ctx, view, c)
			if err != nil {
				return err
			}
			out = append(out, node)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog map: %w", err)
	}
	return out, nil
}

func mapCategory(ctx context.Context, view Store, c *Category) (MapCategory, error) {
	node := MapCategory{
		ID:        c.ID,
		Title:     c.Title,
		Cover:     c.Cover,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Lessons:   []MapLesson{},
		Series:    []MapSeries{},
	}

	lessons, err := view.ListLessons(ctx, c.ID)
	if err != nil {
		return node, err
	}
	for _, l := range lessons {
		node.Lessons = append(node.Lessons, MapLesson{
			ID:         l.ID,
			CategoryID: l.CategoryID,
			Title:      l.Title,
			Cover:      l.Cover,
			CreatedAt:  l.CreatedAt,
			UpdatedAt:  l.UpdatedAt,
		})
	}

	series, err := view.ListSeries(ctx, c.ID)
	if err != nil {
		return node, err
	}
	for _, sr := range series {
		sn := MapSeries{
			ID:            sr.ID,
			CategoryID:    sr.CategoryID,
			Title:         sr.Title,
			Cover:         sr.Cover,
			CreatedAt:     sr.CreatedAt,
			UpdatedAt:     sr.UpdatedAt,
			SeriesLessons: []MapSeriesLesson{},
		}
		seriesLessons, err := view.ListSeriesLessons(ctx, c.ID, sr.ID)
		if err != nil {
			return node, err
		}
		for _, sl := range seriesLessons {
			sn.SeriesLessons = append(sn.SeriesLessons, MapSeriesLesson{
				ID:         sl.ID,
				CategoryID: sl.CategoryID,
				SeriesID:   sl.SeriesID,
				Title:      sl.Title,
				Cover:      sl.Cover,
				CreatedAt:  sl.CreatedAt,
				UpdatedAt:  sl.UpdatedAt,
			})
		}
		node.Series = append(node.Series, sn)
	}

	return node, nil
}
