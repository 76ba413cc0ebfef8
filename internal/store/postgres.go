package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"VITALSENSE_BACK-END/internal/models"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Postgres is the remote persistence layer for profiles and scan history.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps the shared connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// GetProfile loads the user's health profile. Returns ErrNotFound when the
// user has not completed onboarding yet.
func (s *Postgres) GetProfile(ctx context.Context, userID uuid.UUID) (models.UserProfile, error) {
	const q = `
select name, condition, custom_condition_name, additional_context, current_symptoms, language
from public.profiles
where user_id = $1
limit 1;
`
	var (
		profile    models.UserProfile
		customName *string
		language   *string
	)
	err := s.pool.QueryRow(ctx, q, userID).Scan(
		&profile.Name,
		&profile.Condition,
		&customName,
		&profile.AdditionalContext,
		&profile.CurrentSymptoms,
		&language,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserProfile{}, ErrNotFound
		}
		return models.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	if customName != nil {
		profile.CustomConditionName = *customName
	}
	if language != nil {
		profile.Language = models.AppLanguage(*language)
	}
	if profile.AdditionalContext == nil {
		profile.AdditionalContext = []string{}
	}
	if profile.CurrentSymptoms == nil {
		profile.CurrentSymptoms = []string{}
	}
	return profile, nil
}

// UpsertProfile writes the profile, creating it on first onboarding completion.
func (s *Postgres) UpsertProfile(ctx context.Context, userID uuid.UUID, profile models.UserProfile) error {
	const q = `
insert into public.profiles(
	user_id, name, condition, custom_condition_name, additional_context, current_symptoms, language, updated_at
) values (
	$1, $2, $3, nullif($4,''), $5, $6, $7, $8
)
on conflict (user_id) do update set
	name = excluded.name,
	condition = excluded.condition,
	custom_condition_name = excluded.custom_condition_name,
	additional_context = excluded.additional_context,
	current_symptoms = excluded.current_symptoms,
	language = excluded.language,
	updated_at = excluded.updated_at;
`
	_, err := s.pool.Exec(ctx, q,
		userID,
		profile.Name,
		string(profile.Condition),
		profile.CustomConditionName,
		profile.AdditionalContext,
		profile.CurrentSymptoms,
		string(profile.Language),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// InsertScan records a completed analysis. Food-only details are flattened
// into their own columns; they are null for non-food rows.
func (s *Postgres) InsertScan(ctx context.Context, userID uuid.UUID, item models.ScanHistoryItem) error {
	const q = `
insert into public.scans(
	id, user_id, product_name, category, icon, status, score, explanation,
	ingredients, full_ingredient_list, alternatives,
	nutri_score, nutrition_advisor, dietary_suitability,
	is_favorite, captured_at, created_at
) values (
	$1, $2, $3, $4, $5, $6, $7, $8,
	$9, $10, $11,
	nullif($12,''), $13, $14,
	$15, $16, $17
);
`
	ingredients, err := json.Marshal(item.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal ingredients: %w", err)
	}
	alternatives, err := json.Marshal(item.Alternatives)
	if err != nil {
		return fmt.Errorf("marshal alternatives: %w", err)
	}

	var (
		nutriScore  string
		advisor     []byte
		suitability []byte
	)
	if item.Food != nil {
		nutriScore = string(item.Food.NutriScore)
		if item.Food.NutritionAdvisor != nil {
			if advisor, err = json.Marshal(item.Food.NutritionAdvisor); err != nil {
				return fmt.Errorf("marshal nutrition advisor: %w", err)
			}
		}
		if item.Food.DietarySuitability != nil {
			if suitability, err = json.Marshal(item.Food.DietarySuitability); err != nil {
				return fmt.Errorf("marshal dietary suitability: %w", err)
			}
		}
	}

	_, err = s.pool.Exec(ctx, q,
		item.ID, userID, item.ProductName, string(item.Category), item.Icon,
		string(item.Status), item.Score, item.Explanation,
		ingredients, item.FullIngredientList, alternatives,
		nutriScore, advisor, suitability,
		item.IsFavorite, item.Timestamp, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// ListScans returns the user's history, newest first. With favoritesOnly the
// predicate is applied in SQL so old favorites are not lost to the limit.
func (s *Postgres) ListScans(ctx context.Context, userID uuid.UUID, limit int, favoritesOnly bool) ([]models.ScanHistoryItem, error) {
	q := `
select id, product_name, category, icon, status, score, explanation,
	ingredients, full_ingredient_list, alternatives,
	nutri_score, nutrition_advisor, dietary_suitability,
	is_favorite, captured_at
from public.scans
where user_id = $1
order by created_at desc
limit $2;
`
	if favoritesOnly {
		q = `
select id, product_name, category, icon, status, score, explanation,
	ingredients, full_ingredient_list, alternatives,
	nutri_score, nutrition_advisor, dietary_suitability,
	is_favorite, captured_at
from public.scans
where user_id = $1 and is_favorite
order by created_at desc
limit $2;
`
	}
	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var items []models.ScanHistoryItem
	for rows.Next() {
		var (
			item         models.ScanHistoryItem
			category     string
			status       string
			ingredients  []byte
			alternatives []byte
			nutriScore   *string
			advisor      []byte
			suitability  []byte
		)
		err := rows.Scan(
			&item.ID, &item.ProductName, &category, &item.Icon, &status,
			&item.Score, &item.Explanation,
			&ingredients, &item.FullIngredientList, &alternatives,
			&nutriScore, &advisor, &suitability,
			&item.IsFavorite, &item.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		item.Category = models.ProductCategory(category)
		item.Status = models.ScanStatus(status)
		if len(ingredients) > 0 {
			if err := json.Unmarshal(ingredients, &item.Ingredients); err != nil {
				item.Ingredients = []models.IngredientFinding{}
			}
		}
		if len(alternatives) > 0 {
			if err := json.Unmarshal(alternatives, &item.Alternatives); err != nil {
				item.Alternatives = []models.Alternative{}
			}
		}
		if item.Category == models.CategoryFood {
			food := &models.FoodDetails{}
			if nutriScore != nil {
				food.NutriScore = models.NutriScore(*nutriScore)
			}
			if len(advisor) > 0 {
				_ = json.Unmarshal(advisor, &food.NutritionAdvisor)
			}
			if len(suitability) > 0 {
				var ds models.DietarySuitability
				if err := json.Unmarshal(suitability, &ds); err == nil {
					food.DietarySuitability = &ds
				}
			}
			item.Food = food
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return items, nil
}

// ToggleFavorite atomically flips the favorite flag and returns the new state.
func (s *Postgres) ToggleFavorite(ctx context.Context, userID, scanID uuid.UUID) (bool, error) {
	const q = `
update public.scans
set is_favorite = not is_favorite
where id = $1 and user_id = $2
returning is_favorite;
`
	var favorite bool
	err := s.pool.QueryRow(ctx, q, scanID, userID).Scan(&favorite)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return favorite, nil
}
