package search

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/search/entity"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
)

// domainIDPrefix namespaces derived domain entries.
const domainIDPrefix = "domain:"

// assemble builds an index snapshot from catalog entities.
// Domains are derived from contracts in first-seen order. Products inherit
// domain and layer from their contract, and its status when they have none.
func assemble(contracts []contract.Contract, products []product.Product, now time.Time) index.Index {
	idx := index.Index{
		Domains:     []index.Entry{},
		Contracts:   make([]index.Entry, 0, len(contracts)),
		Products:    make([]index.Entry, 0, len(products)),
		LastUpdated: now,
	}

	type domainAgg struct {
		name        string
		contracts   int
		collections []string
	}
	var order []string
	domains := make(map[string]*domainAgg)
	byID := make(map[string]*contract.Contract, len(contracts))

	for i := range contracts {
		c := &contracts[i]
		byID[c.ID] = c

		idx.Contracts = append(idx.Contracts, index.Entry{
			ID:           c.ID,
			Type:         entity.Contract,
			Name:         c.Name,
			Description:  c.Description,
			Keywords:     extractKeywords(c.Name, c.Description),
			Domain:       c.Domain,
			Layer:        string(c.Tags.Layer),
			Status:       string(c.Tags.Status),
			QualityScore: c.QualityScore,
		})

		if c.Domain == "" {
			continue
		}
		agg, ok := domains[c.Domain]
		if !ok {
			agg = &domainAgg{name: c.Domain}
			domains[c.Domain] = agg
			order = append(order, c.Domain)
		}
		agg.contracts++
		if c.Collection != "" && !containsString(agg.collections, c.Collection) {
			agg.collections = append(agg.collections, c.Collection)
		}
	}

	for _, name := range order {
		agg := domains[name]
		desc := fmt.Sprintf("%s domain with %d data contracts", agg.name, agg.contracts)
		if len(agg.collections) > 0 {
			cols := append([]string(nil), agg.collections...)
			sort.Strings(cols)
			desc += " in " + strings.Join(cols, ", ")
		}
		idx.Domains = append(idx.Domains, index.Entry{
			ID:          domainIDPrefix + slugify(agg.name),
			Type:        entity.Domain,
			Name:        agg.name,
			Description: desc,
			Keywords:    extractKeywords(agg.name, desc),
			Domain:      agg.name,
		})
	}

	for i := range products {
		p := &products[i]
		e := index.Entry{
			ID:           p.ID,
			Type:         entity.Product,
			Name:         p.Name,
			Description:  p.Description,
			Keywords:     extractKeywords(p.Name, p.Description),
			Technology:   p.Technology,
			Status:       string(p.Status),
			QualityScore: p.QualityScore,
		}
		if c, ok := byID[p.DataContractID]; ok {
			e.Domain = c.Domain
			e.Layer = string(c.Tags.Layer)
			if e.Status == "" {
				e.Status = string(c.Tags.Status)
			}
		}
		idx.Products = append(idx.Products, e)
	}

	return idx
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
