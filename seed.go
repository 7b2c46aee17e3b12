package main

import (
	"context"
	"log"
)

// defaultFoods is the starter catalog loaded on first run. Macro values are
// per 100 grams.
var defaultFoods = []foodRef{
	{Name: "Chicken breast", Category: "Protein", Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6},
	{Name: "Salmon", Category: "Protein", Calories: 208, Protein: 20, Carbs: 0, Fat: 13},
	{Name: "Eggs", Category: "Protein", Calories: 155, Protein: 13, Carbs: 1.1, Fat: 11},
	{Name: "Greek yogurt", Category: "Dairy", Calories: 59, Protein: 10, Carbs: 3.6, Fat: 0.4},
	{Name: "Whole milk", Category: "Dairy", Calories: 61, Protein: 3.2, Carbs: 4.8, Fat: 3.3},
	{Name: "Cheddar cheese", Category: "Dairy", Calories: 403, Protein: 25, Carbs: 1.3, Fat: 33},
	{Name: "Rice", Category: "Grains", Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3},
	{Name: "Oats", Category: "Grains", Calories: 389, Protein: 17, Carbs: 66, Fat: 6.9},
	{Name: "Whole wheat bread", Category: "Grains", Calories: 247, Protein: 13, Carbs: 41, Fat: 3.4},
	{Name: "Pasta", Category: "Grains", Calories: 131, Protein: 5, Carbs: 25, Fat: 1.1},
	{Name: "Potato", Category: "Vegetables", Calories: 77, Protein: 2, Carbs: 17, Fat: 0.1},
	{Name: "Broccoli", Category: "Vegetables", Calories: 34, Protein: 2.8, Carbs: 7, Fat: 0.4},
	{Name: "Spinach", Category: "Vegetables", Calories: 23, Protein: 2.9, Carbs: 3.6, Fat: 0.4},
	{Name: "Tomato", Category: "Vegetables", Calories: 18, Protein: 0.9, Carbs: 3.9, Fat: 0.2},
	{Name: "Banana", Category: "Fruit", Calories: 89, Protein: 1.1, Carbs: 23, Fat: 0.3},
	{Name: "Apple", Category: "Fruit", Calories: 52, Protein: 0.3, Carbs: 14, Fat: 0.2},
	{Name: "Orange", Category: "Fruit", Calories: 47, Protein: 0.9, Carbs: 12, Fat: 0.1},
	{Name: "Olive oil", Category: "Fats", Calories: 884, Protein: 0, Carbs: 0, Fat: 100},
	{Name: "Almonds", Category: "Fats", Calories: 579, Protein: 21, Carbs: 22, Fat: 50},
	{Name: "Peanut butter", Category: "Fats", Calories: 588, Protein: 25, Carbs: 20, Fat: 50},
	{Name: "Lentils", Category: "Legumes", Calories: 116, Protein: 9, Carbs: 20, Fat: 0.4},
	{Name: "Chickpeas", Category: "Legumes", Calories: 164, Protein: 8.9, Carbs: 27, Fat: 2.6},
}

// seedFoodsIfEmpty populates the food catalog on first run. Any existing row
// disables seeding, so user deletions of defaults stick.
func seedFoodsIfEmpty(ctx context.Context, store tableStore) error {
	rows, err := store.ListRows(ctx, tabFoods)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	log.Printf("[seedFoodsIfEmpty] seeding %d default foods", len(defaultFoods))
	for _, f := range defaultFoods {
		f.ID = newRowID()
		if err := store.AppendRow(ctx, tabFoods, foodToRow(f)); err != nil {
			return err
		}
	}
	return nil
}
