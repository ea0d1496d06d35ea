/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/tomoncle/galley"
	"github.com/tomoncle/galley/database"
	"github.com/tomoncle/galley/model"
	"github.com/tomoncle/galley/repository"
	"github.com/tomoncle/galley/utils"
)

var (
	title   = color.New(color.FgCyan, color.Bold).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
	failure = color.New(color.FgRed).SprintFunc()
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	migrate := flag.Bool("migrate", false, "apply pending migrations before the demo")
	seed := flag.Bool("seed", false, "load the seed data before the demo")
	flag.Parse()

	if *logLevel != "" {
		utils.ConfigureLogLevel(*logLevel)
	}
	if err := run(context.Background(), *configPath, *migrate, *seed); err != nil {
		fmt.Fprintln(os.Stderr, failure("galley:"), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, migrate, seed bool) error {
	cfg, err := database.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := database.InitDB(cfg); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() { _ = database.CloseDB() }()

	if migrate {
		if err := database.RunMigrations(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if seed {
		if err := database.InitData(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	printStatus(ctx)
	return demo(ctx, galley.NewMenuService())
}

func printStatus(ctx context.Context) {
	status := database.GetHealthStatus(ctx)
	if !status.Healthy {
		fmt.Println(failure("database unhealthy:"), status.LastError)
		return
	}
	stats := database.GetDatabaseStats()
	fmt.Printf("%s %s open=%d idle=%d\n", success("database ok"), status.ResponseTime, stats.OpenConns, stats.Idle)
}

func demo(ctx context.Context, svc galley.MenuService) error {
	fmt.Println(title("== Dish lookup =="))
	for _, id := range []int64{1, 999} {
		dish, err := svc.FindDishByID(ctx, id)
		var nf *repository.NotFoundError
		switch {
		case errors.As(err, &nf):
			fmt.Println(failure("not found:"), nf)
		case err != nil:
			return err
		default:
			printDish(dish)
		}
	}

	fmt.Println(title("== Catalogue, page 1 =="))
	page, err := svc.FindIngredients(ctx, 1, 5)
	if err != nil {
		return err
	}
	fmt.Printf("%d ingredients in total\n", page.Total)
	for _, ing := range page.Items {
		printIngredient(ing)
	}

	fmt.Println(title("== New ingredients =="))
	created, err := svc.CreateIngredients(ctx,
		model.NewIngredient("Fromage", model.CategoryDairy, decimal.NewFromInt(1200)).WithQuantity(decimal.NewFromInt(1)),
		model.NewIngredient("Oignon", model.CategoryVegetable, decimal.NewFromInt(500)).WithQuantity(decimal.NewFromInt(2)),
	)
	if err != nil {
		return err
	}
	for _, ing := range created {
		printIngredient(ing)
	}

	fmt.Println(title("== New dish =="))
	onions, err := svc.CreateIngredients(ctx,
		model.NewIngredient("Oignon", model.CategoryVegetable, decimal.NewFromInt(500)).WithQuantity(decimal.NewFromInt(3)))
	if err != nil {
		return err
	}
	soup, err := svc.SaveDish(ctx, model.NewDish("Soupe de légumes", model.DishTypeStart, onions...))
	if err != nil {
		return err
	}
	printDish(soup)

	fmt.Println(title("== Dish update =="))
	salad, err := svc.FindDishByID(ctx, 1)
	if err != nil {
		return err
	}
	salad.Name = "Salade fraîche"
	salad.Ingredients = []*model.Ingredient{{ID: 1}, {ID: 2}}
	salad.WithPrice(decimal.NewFromInt(4000))
	salad, err = svc.SaveDish(ctx, salad)
	if err != nil {
		return err
	}
	printDish(salad)

	fmt.Println(title("== Search =="))
	dishes, err := svc.FindDishesByIngredientName(ctx, "oignon")
	if err != nil {
		return err
	}
	for _, d := range dishes {
		fmt.Printf("uses oignon: #%d %s\n", d.ID, d.Name)
	}
	vegetables, err := svc.FindIngredientsByCriteria(ctx, repository.Criteria{
		Category: model.CategoryVegetable,
		DishName: "salade",
		Page:     1,
		Size:     10,
	})
	if err != nil {
		return err
	}
	for _, ing := range vegetables {
		printIngredient(ing)
	}
	return nil
}

func printDish(d *model.Dish) {
	price := "unset"
	if d.Price != nil {
		price = d.Price.StringFixed(2)
	}
	fmt.Printf("%s #%d %s (%s) price=%s\n", success("dish"), d.ID, d.Name, d.DishType.Desc(), price)
	for _, ing := range d.Ingredients {
		fmt.Print("  ")
		printIngredient(ing)
	}

	margin, err := d.GrossMargin()
	var missing *model.MissingQuantityError
	switch {
	case errors.Is(err, model.ErrPriceUnset):
		fmt.Println("  margin: no price")
	case errors.As(err, &missing):
		fmt.Println("  margin:", failure(missing.Error()))
	case err != nil:
		fmt.Println("  margin:", failure(err.Error()))
	default:
		fmt.Println("  margin:", success(margin.StringFixed(2)))
	}
}

func printIngredient(ing *model.Ingredient) {
	qty := "-"
	if ing.Quantity != nil {
		qty = ing.Quantity.String()
	}
	fmt.Printf("ingredient #%d %-12s %-9s price=%s qty=%s\n",
		ing.ID, ing.Name, strings.ToLower(ing.Category.String()), ing.Price.StringFixed(2), qty)
}
