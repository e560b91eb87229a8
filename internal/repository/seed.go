package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoUser is one user with the items they list, inserted by Seed.
type DemoUser struct {
	Name  string
	Email string
	Items []DemoItem
}

type DemoItem struct {
	Name        string
	Description string
	Available   bool
}

// DefaultDemoData is the data set used by cmd/seed.
var DefaultDemoData = []DemoUser{
	{Name: "Alice", Email: "alice@shareit.local", Items: []DemoItem{
		{Name: "Cordless drill", Description: "18V, two batteries", Available: true},
		{Name: "Ladder", Description: "3m aluminium", Available: true},
	}},
	{Name: "Bob", Email: "bob@shareit.local", Items: []DemoItem{
		{Name: "Camping tent", Description: "Sleeps four", Available: true},
		{Name: "Projector", Description: "Lamp needs replacing", Available: false},
	}},
	{Name: "Carol", Email: "carol@shareit.local"},
}

// Seed inserts users and their items in one transaction. Users already present
// by email are left as they are, along with their items.
func Seed(ctx context.Context, db *gorm.DB, data []DemoUser, now time.Time) (users, items int, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, du := range data {
			u := UserModel{Name: du.Name, Email: du.Email, CreatedAt: now}
			res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).Create(&u)
			if res.Error != nil {
				return fmt.Errorf("failed to seed user %s: %w", du.Email, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			users++

			for _, di := range du.Items {
				it := ItemModel{Name: di.Name, Description: di.Description, Available: di.Available, OwnerID: u.ID, CreatedAt: now}
				if err := tx.Create(&it).Error; err != nil {
					return fmt.Errorf("failed to seed item %s: %w", di.Name, err)
				}
				items++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return users, items, nil
}
