package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/tammytan95/pilea/internal/apiclient"
	"github.com/tammytan95/pilea/internal/config"
	"github.com/tammytan95/pilea/pkg/aggregate"
)

// dumps per-category and per-merchant totals from the stored snapshot,
// useful for eyeballing what the exclusion table is filtering out
func main() {
	configFile := flag.String("config", "./config.yml", "configuration file")
	secretsFile := flag.String("secrets", "./secrets.json", "secrets file")

	flag.Parse()

	err := config.ReadConfig("PILEA_CONFIG", *configFile, *secretsFile)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	api, err := apiclient.New(config.CurrentAPIConfig().BaseURL)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx := context.Background()
	creds := config.CurrentPileaSecrets()

	_, err = api.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	snapshot, err := api.RetrieveTransactions(ctx)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	tagged := aggregate.Tag(snapshot.Transactions, snapshot.Cards)

	totals := make(map[string]float64)
	for category, group := range aggregate.ByCategory(tagged) {
		totals[category] = group.Amount
	}

	PrettyPrint("categories", totals)

	totals = make(map[string]float64)
	for name, group := range aggregate.ByName(tagged) {
		totals[name] = group.Amount
	}

	PrettyPrint("merchants", totals)

	fmt.Printf("%d of %d transactions countable\n", len(tagged), len(snapshot.Transactions))
}

func PrettyPrint(prefix string, v interface{}) (err error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err == nil {
		fmt.Println(prefix + ": " + string(b))
	}
	return
}
