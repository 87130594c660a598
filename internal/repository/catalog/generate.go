package catalog

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/compat"
)

// idNamespace scopes the name-based ids of generated records.
var idNamespace = uuid.MustParse("6f0c1e5a-3b7d-5c2e-9a41-8d2f6b0e4c17")

type domainSeed struct {
	name        string
	owner       string
	collections []collectionSeed
}

type collectionSeed struct {
	name    string
	subject string // human phrase used in names and descriptions
	columns []contract.Column
}

var catalogSeeds = []domainSeed{
	{
		name: "Cards", owner: "cards-data@company.io",
		collections: []collectionSeed{
			{name: "transactions", subject: "card transactions", columns: cols("transaction_id", "card_id", "amount", "merchant", "authorized_at")},
			{name: "accounts", subject: "credit card accounts", columns: cols("account_id", "customer_id", "credit_limit", "opened_at")},
		},
	},
	{
		name: "Insurance", owner: "insurance-data@company.io",
		collections: []collectionSeed{
			{name: "policies", subject: "insurance policies", columns: cols("policy_id", "customer_id", "premium", "coverage", "starts_at")},
			{name: "claims", subject: "insurance claims", columns: cols("claim_id", "policy_id", "amount", "status", "reported_at")},
		},
	},
	{
		name: "Consortium", owner: "consortium-data@company.io",
		collections: []collectionSeed{
			{name: "groups", subject: "consortium groups", columns: cols("group_id", "asset_type", "term_months", "created_at")},
			{name: "quotas", subject: "consortium quotas", columns: cols("quota_id", "group_id", "member_id", "paid_installments")},
		},
	},
	{
		name: "Payments", owner: "payments-data@company.io",
		collections: []collectionSeed{
			{name: "transfers", subject: "instant payment transfers", columns: cols("transfer_id", "payer_id", "payee_id", "amount", "settled_at")},
		},
	},
	{
		name: "Customer", owner: "customer-data@company.io",
		collections: []collectionSeed{
			{name: "profiles", subject: "customer profiles", columns: cols("customer_id", "segment", "country", "updated_at")},
		},
	},
}

// technologies lists plausible engines per pipeline type.
var technologies = map[pipeline.Type][]string{
	pipeline.Ingestion:      {"Airbyte", "Kafka Connect", "Fivetran", "Debezium"},
	pipeline.Processing:     {"Spark", "dbt", "Flink", "BigQuery"},
	pipeline.ModelInference: {"Spark ML", "Ray", "SageMaker Batch"},
	pipeline.ModelTraining:  {"PyTorch", "XGBoost", "TensorFlow"},
	pipeline.ModelServing:   {"Seldon", "KServe", "SageMaker Endpoint"},
}

var layerStage = map[layer.Layer]string{
	layer.Bronze: "raw",
	layer.Silver: "curated",
	layer.Gold:   "aggregated",
	layer.Model:  "model features for",
}

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func cols(names ...string) []contract.Column {
	out := make([]contract.Column, len(names))
	for i, n := range names {
		out[i] = contract.Column{Name: n, Type: columnType(n), Nullable: i != 0, PrimaryKey: i == 0}
	}
	return out
}

func columnType(name string) string {
	switch {
	case strings.HasSuffix(name, "_at"):
		return "timestamp"
	case strings.HasSuffix(name, "_id"):
		return "string"
	case name == "amount" || name == "premium" || name == "credit_limit" || name == "coverage":
		return "decimal(18,2)"
	case strings.HasSuffix(name, "_months") || strings.HasSuffix(name, "_installments"):
		return "int"
	default:
		return "string"
	}
}

func newID(kind, name string) string {
	return uuid.NewSHA1(idNamespace, []byte(kind+":"+name)).String()
}

// generate builds the mock catalog for seed: every collection gets a contract
// per layer, and every contract one to three products whose pipeline types
// follow the layer rules. A few products carry incomplete configs or
// repeated technologies so validation has something to report.
func generate(seed uint64) ([]contract.Contract, []product.Product) {
	rng := rand.New(rand.NewPCG(seed, seed+1)) //nolint:gosec // simulation only

	var (
		contracts []contract.Contract
		products  []product.Product
	)
	for _, d := range catalogSeeds {
		for _, c := range d.collections {
			for _, l := range layer.All() {
				ct := newContract(rng, d, c, l)
				contracts = append(contracts, ct)
				products = append(products, newProducts(rng, &ct, c)...)
			}
		}
	}
	return contracts, products
}

func newContract(rng *rand.Rand, d domainSeed, c collectionSeed, l layer.Layer) contract.Contract {
	name := fmt.Sprintf("%s_%s_%s", strings.ToLower(d.name), c.name, strings.ToLower(l.String()))
	created := baseTime.Add(time.Duration(rng.IntN(365*24)) * time.Hour)

	status := contract.Published
	switch r := rng.Float64(); {
	case r < 0.15:
		status = contract.Draft
	case r < 0.2:
		status = contract.Archived
	}

	return contract.Contract{
		ID:          newID("contract", name),
		Name:        name,
		Description: fmt.Sprintf("%s %s of the %s domain", capitalize(layerStage[l]), c.subject, d.name),
		Domain:      d.name,
		Collection:  c.name,
		Owner:       d.owner,
		Schema: contract.TableSchema{
			TableName: name,
			Columns:   c.columns,
			Dictionary: map[string]string{
				c.columns[0].Name: "Unique identifier of the record",
			},
		},
		QualityRules: []contract.QualityRule{
			{Name: "primary key not null", Column: c.columns[0].Name, Rule: "not_null", Severity: "error"},
			{Name: "primary key unique", Column: c.columns[0].Name, Rule: "unique", Severity: "error"},
		},
		Tags: contract.Tags{
			Layer:  l,
			Status: status,
			Labels: []string{strings.ToLower(d.name), c.name},
		},
		QualityScore: score(rng),
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Duration(rng.IntN(90*24)) * time.Hour),
	}
}

func newProducts(rng *rand.Rand, c *contract.Contract, seed collectionSeed) []product.Product {
	allowed := compat.RecommendedPipelineTypes(c.Layer())
	n := 1 + rng.IntN(3)
	used := map[string]bool{}

	out := make([]product.Product, 0, n)
	for i := range n {
		t := allowed[rng.IntN(len(allowed))]
		techs := technologies[t]
		tech := techs[rng.IntN(len(techs))]
		// Mostly unique per contract; repeats are deliberate validation failures.
		if used[tech] && rng.Float64() < 0.7 {
			tech = techs[(rng.IntN(len(techs))+1)%len(techs)]
		}
		used[tech] = true

		name := fmt.Sprintf("%s %s %d", seed.subject, strings.ReplaceAll(t.String(), "_", " "), i+1)
		out = append(out, product.Product{
			ID:             newID("product", c.Name+"/"+name),
			Name:           name,
			Description:    fmt.Sprintf("%s pipeline on %s for %s", capitalize(strings.ReplaceAll(t.String(), "_", " ")), tech, c.Name),
			DataContractID: c.ID,
			PipelineType:   t,
			Technology:     tech,
			Config:         newConfig(rng, t, c.Schema.TableName),
			Status:         c.Status(),
			QualityScore:   score(rng),
		})
	}
	return out
}

// newConfig returns a complete config for t, or with small probability one
// with a required block left out.
func newConfig(rng *rand.Rand, t pipeline.Type, table string) product.Config {
	source := product.Section{"type": "table", "table": table + "_upstream"}
	target := product.Section{"type": "table", "table": table}
	model := &product.Model{
		Name: table + "_model", Version: fmt.Sprintf("1.%d.0", rng.IntN(10)),
		Framework: "sklearn", ArtifactPath: "s3://models/" + table + "/model.pkl",
	}
	incomplete := rng.Float64() < 0.1

	switch t {
	case pipeline.Ingestion:
		cfg := product.IngestionConfig{Source: source, Target: target}
		if incomplete {
			cfg.Target = nil
		}
		return cfg
	case pipeline.Processing:
		cfg := product.ProcessingConfig{Source: source, Target: target}
		if incomplete {
			cfg.Source = nil
		}
		return cfg
	case pipeline.ModelInference:
		cfg := product.InferenceConfig{Source: source, Model: model, Target: target}
		if incomplete {
			cfg.Model = nil
		}
		return cfg
	case pipeline.ModelTraining:
		if incomplete {
			model.ArtifactPath = ""
		}
		return product.TrainingConfig{Source: source, Model: model}
	case pipeline.ModelServing:
		cfg := product.ServingConfig{Model: model, Endpoint: product.Section{"url": "https://models.internal/" + table}}
		if rng.Float64() < 0.3 {
			cfg.Target = product.Section{"type": "table", "table": table + "_requests"}
		}
		return cfg
	default:
		return nil
	}
}

func score(rng *rand.Rand) *float64 {
	if rng.Float64() < 0.2 {
		return nil
	}
	v := float64(60+rng.IntN(41)) / 100
	return &v
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
