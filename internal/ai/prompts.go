package ai

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	ExtractJob    string
	EnhanceSkills string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	ExtractJob    string
	EnhanceSkills string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	ExtractJob: `You are an expert recruitment analyst specializing in global remote hiring. Your core principles are:

- Base every conclusion strictly on the text of the job posting
- NEVER invent requirements, skills, or responsibilities that are not stated or clearly implied
- Use consistent, conservative judgment when scoring role complexity
- Classify roles into the provided catalog only

Your expertise includes:
- Job requirement analysis and role classification
- Seniority and experience assessment
- Remote work suitability evaluation
- Compensation-relevant factor identification`,

	EnhanceSkills: `You are an expert talent assessor with deep knowledge of skill taxonomies across marketing, operations, analytics and administrative roles. Your role is to:

- Consolidate and deduplicate skill lists without losing meaning
- Group skills into clear, recruiter-friendly categories
- Suggest certifications only when they are genuinely standard for the role
- Keep must-have and nice-to-have lists strictly separate

Never promote a nice-to-have skill into must-have, and never drop a must-have skill.`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	ExtractJob: `Analyze the following job posting and extract a structured profile.

**Tasks:**

1. **Role Classification**:
   Assign exactly one role category from this catalog:
   Brand Marketing Manager, Community Manager, Content Marketer, Retention Manager, Ecommerce Manager, Sales Operations Manager, Data Analyst, Logistics Manager, Operations Manager, Admin & EA.
   Pick the closest match; do not invent new categories.

2. **Experience Assessment**:
   - Experience level: junior, mid, senior or expert
   - Years of experience required, as stated or implied (e.g. "3-5 years")

3. **Complexity Score** (1-10):
   Rate the overall role complexity. 1-3 is routine execution work, 4-6 is
   skilled independent work, 7-8 requires significant strategic ownership,
   9-10 is rare leadership or deep specialist work.

4. **Skills**:
   - Must-have skills: 5-8 skills that are explicit requirements
   - Nice-to-have skills: up to 5 skills that are preferred but optional

5. **Key Responsibilities**: the 3-6 primary responsibilities of the role.

6. **Remote Work Suitability**: low, medium or high, based on how well the
   described work can be performed remotely.

7. **Salary Factors**: the factors in this posting that should influence
   compensation (scope, team size, technical depth, market, etc.).

8. **Unique Challenges**: anything unusual about hiring for this role.

**Job Title:**
-----
%s
-----

**Job Description:**
-----
%s
-----

**Hiring Challenges (may be empty):**
-----
%s
-----`,

	EnhanceSkills: `Consolidate and enrich the skill profile for a role classified as "%s".

**Tasks:**

1. **Deduplicate**: merge skills that are the same thing under different
   names (e.g. "GA4" and "Google Analytics 4"). Keep the clearer name.

2. **Separate strictly**: a skill may appear in must-have OR nice-to-have,
   never both. When in doubt, must-have wins.

3. **Categorize**: group all skills into 3-5 named categories that a
   recruiter would recognize (e.g. "Analytics & Reporting", "Tools & Platforms").

4. **Certifications**: list up to 3 certifications that are genuinely
   standard for this role category, or none.

**Must-Have Skills:**
-----
%s
-----

**Nice-to-Have Skills:**
-----
%s
-----`,
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `json:"systemPrompts"`
	UserPrompts   UserPrompts   `json:"userPrompts"`
}

// GetDefaultPromptConfig returns the default prompt configuration
func GetDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompts: DefaultSystemPrompts,
		UserPrompts:   DefaultUserPrompts,
	}
}
