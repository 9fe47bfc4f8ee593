// Package config resolves ticketflow's layered configuration.
//
// Precedence, highest first:
//  1. Command-line flags (via ResolveWithFlags)
//  2. Environment variables (TICKETFLOW_*, with .env loaded first)
//  3. Local config (.ticketflow.yaml at the project root)
//  4. Global config (~/.config/ticketflow/config.yaml)
//  5. Built-in defaults
//
// Secrets (API tokens, the approval signing secret, webhook URLs) are
// accepted only from the environment or a .env file; a secret found in a
// YAML config file is ignored with a warning so credentials never end up
// in committed files.
//
// Typical use:
//
//	settings, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	ledger := budget.NewLedger(store, budget.WithDailyLimit(settings.DailyBudgetUSD))
//
// Each resolved value tracks its source, so tooling can answer "where did
// this value come from":
//
//	cfg := config.NewResolver().Resolve()
//	value, source := cfg.GetWithSource("daily_budget_usd")
package config
