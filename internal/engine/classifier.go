package engine

import (
	"fmt"
	"strings"

	"talentscan/internal/errors"
	"talentscan/internal/types"
)

// Classification is the outcome of role classification. Certainty feeds the
// confidence score: 1.0 for an authoritative title lookup, 0.6 otherwise.
type Classification struct {
	Category  types.RoleCategory
	Certainty float64
	Source    string // "lookup", "ai" or "keyword"
	// Corrected is set when the AI guess disagreed with the title lookup and
	// was overridden. Tracked as a classifier drift signal.
	Corrected bool
}

// Classifier resolves a posting to a catalog role category. The exact title
// lookup is authoritative; the AI guess is used only when the title is not in
// the table.
type Classifier struct {
	lookup map[string]types.RoleCategory
	logger *errors.Logger
}

// alternateTitles maps folded job titles to catalog categories, beyond the
// catalog names themselves.
var alternateTitles = map[string]types.RoleCategory{
	"brand manager":                 types.RoleBrandMarketingManager,
	"marketing manager":             types.RoleBrandMarketingManager,
	"social media manager":          types.RoleCommunityManager,
	"content marketing manager":     types.RoleContentMarketer,
	"content strategist":            types.RoleContentMarketer,
	"crm manager":                   types.RoleRetentionManager,
	"lifecycle marketing manager":   types.RoleRetentionManager,
	"e-commerce manager":            types.RoleEcommerceManager,
	"shopify manager":               types.RoleEcommerceManager,
	"sales ops manager":             types.RoleSalesOpsManager,
	"revenue operations manager":    types.RoleSalesOpsManager,
	"business intelligence analyst": types.RoleDataAnalyst,
	"analytics specialist":          types.RoleDataAnalyst,
	"supply chain manager":          types.RoleLogisticsManager,
	"ops manager":                   types.RoleOperationsManager,
	"executive assistant":           types.RoleAdminEA,
	"administrative assistant":      types.RoleAdminEA,
	"admin assistant":               types.RoleAdminEA,
	"virtual assistant":             types.RoleAdminEA,
}

// NewClassifier builds the title lookup table from the catalog plus alternate
// titles.
func NewClassifier(logger *errors.Logger) *Classifier {
	lookup := make(map[string]types.RoleCategory, len(alternateTitles)+10)
	for _, category := range types.KnownRoleCategories() {
		lookup[foldTitle(string(category))] = category
	}
	for title, category := range alternateTitles {
		lookup[title] = category
	}
	return &Classifier{lookup: lookup, logger: logger}
}

// foldTitle normalizes a title for lookup: lowercase with collapsed
// whitespace.
func foldTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Classify resolves the role category for a posting title given the AI's
// category guess from extraction.
func (c *Classifier) Classify(title, aiGuess string) (Classification, error) {
	if category, ok := c.lookup[foldTitle(title)]; ok {
		corrected := false
		if guessed, err := types.ParseRoleCategory(aiGuess); err == nil && guessed != category {
			corrected = true
			c.logger.Warn("Overriding AI role category with title lookup",
				"title", title,
				"ai_guess", string(guessed),
				"lookup_category", string(category))
		}
		return Classification{
			Category:  category,
			Certainty: 1.0,
			Source:    "lookup",
			Corrected: corrected,
		}, nil
	}

	if category, err := types.ParseRoleCategory(aiGuess); err == nil {
		return Classification{
			Category:  category,
			Certainty: 0.6,
			Source:    "ai",
		}, nil
	}

	return Classification{}, errors.NewAIError(errors.ErrCodeClassificationFailed,
		fmt.Sprintf("No catalog category for title %q or AI guess %q", title, aiGuess), nil)
}

// keywordRules maps title substrings to categories, checked in order.
var keywordRules = []struct {
	keywords []string
	category types.RoleCategory
}{
	{[]string{"brand", "marketing", "creative"}, types.RoleBrandMarketingManager},
	{[]string{"ecommerce", "e-commerce", "shopify"}, types.RoleEcommerceManager},
	{[]string{"data", "analyst", "analytics"}, types.RoleDataAnalyst},
	{[]string{"content", "social"}, types.RoleContentMarketer},
	{[]string{"retention", "lifecycle", "crm"}, types.RoleRetentionManager},
	{[]string{"community"}, types.RoleCommunityManager},
	{[]string{"logistics", "supply chain"}, types.RoleLogisticsManager},
	{[]string{"admin", "assistant"}, types.RoleAdminEA},
	{[]string{"operations", "ops"}, types.RoleOperationsManager},
}

// ClassifyByKeywords attempts a rule-based classification from title keywords.
// Used when AI extraction is unavailable; reports false when no rule matches.
func (c *Classifier) ClassifyByKeywords(title string) (Classification, bool) {
	folded := foldTitle(title)
	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(folded, keyword) {
				return Classification{
					Category:  rule.category,
					Certainty: 0.6,
					Source:    "keyword",
				}, true
			}
		}
	}
	return Classification{}, false
}
