package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"gorm.io/gorm/clause"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/database"
	"github.com/foodgram-app/backend/internal/model"
)

// Loads ingredient and tag fixtures from JSON files into the database.
// Existing rows are left untouched.
func main() {
	ingredientsFile := flag.String("ingredients", "data/ingredients.json", "ingredient fixture file")
	tagsFile := flag.String("tags", "data/tags.json", "tag fixture file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var ingredients []model.Ingredient
	if err := loadJSON(*ingredientsFile, &ingredients); err != nil {
		log.Fatalf("Failed to load ingredients: %v", err)
	}
	if len(ingredients) > 0 {
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredients)
		if res.Error != nil {
			log.Fatalf("Failed to insert ingredients: %v", res.Error)
		}
		log.Printf("Loaded %d of %d ingredients", res.RowsAffected, len(ingredients))
	}

	var tags []model.Tag
	if err := loadJSON(*tagsFile, &tags); err != nil {
		log.Fatalf("Failed to load tags: %v", err)
	}
	for _, tag := range tags {
		if err := model.ValidateSlug(tag.Slug); err != nil {
			log.Fatalf("Invalid tag fixture: %v", err)
		}
	}
	if len(tags) > 0 {
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
		if res.Error != nil {
			log.Fatalf("Failed to insert tags: %v", res.Error)
		}
		log.Printf("Loaded %d of %d tags", res.RowsAffected, len(tags))
	}
}

func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
