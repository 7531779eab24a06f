package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/datasage-ai/datasage/internal/store"
)

// dialectNotes gives the model store-specific syntax guidance.
var dialectNotes = map[string]string{
	"postgresql": "Use PostgreSQL syntax. DATE_TRUNC for dates, INTERVAL for date math. Example: DATE_TRUNC('month', sale_date)",
	"mysql":      "Use MySQL syntax. DATE_FORMAT for dates, DATE_SUB for date math. Example: DATE_SUB(CURDATE(), INTERVAL 1 MONTH)",
	"sqlite":     "Use SQLite syntax. strftime for dates, datetime for date math. Example: date('now', '-1 month')",
}

func dialectNote(kind string) string {
	if note, ok := dialectNotes[kind]; ok {
		return note
	}
	return "Use standard SQL syntax."
}

func renderSchema(schema store.Schema) string {
	doc, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(doc)
}

func tableSelectionPrompt(kind, question string, schema store.Schema) string {
	return fmt.Sprintf(`You are a professional database architect analyzing schema for optimal query design.

Database Type: %s
Database Schema:
%s

User Question: %s

Your task:
1. Identify which tables contain data needed to answer the question accurately
2. Analyze foreign key relationships for proper JOINs
3. Consider performance implications (avoid unnecessary table scans)
4. Ensure all required columns are available in selected tables

Return ONLY a JSON object:
{
    "tables": ["table1", "table2"],
    "reasoning": "Concise explanation of why these specific tables are essential",
    "join_strategy": "Specific JOIN conditions using foreign keys"
}

Response:`, kind, renderSchema(schema), question)
}

func sqlGenerationPrompt(kind, question string, schema store.Schema) string {
	return fmt.Sprintf(`You are an expert SQL developer creating production-ready queries.

Database Type: %s
%s

Relevant Schema:
%s

User Question: %s

Professional Requirements:
1. Generate ONLY the SQL query - no markdown, explanations, or comments
2. Use explicit JOINs with proper ON clauses (never implicit joins)
3. Apply meaningful column aliases for readability (e.g., 'total_sales', 'product_name')
4. Use appropriate date functions for %s for date filtering
5. Include GROUP BY for all aggregations with proper HAVING clauses if needed
6. Add ORDER BY to sort results logically (DESC for rankings, ASC for chronological)
7. Limit results appropriately (LIMIT 20, etc.) for large datasets
8. Optimize for performance - avoid SELECT * when specific columns suffice

SQL Query:`, strings.ToUpper(kind), dialectNote(kind), renderSchema(schema), question, kind)
}

func validationPrompt(kind, query string, schema store.Schema) string {
	return fmt.Sprintf(`You are a senior database security expert validating SQL queries for production use.

Database Type: %s
Schema:
%s

SQL Query:
%s

Perform comprehensive validation:

SECURITY CHECKS:
1. SQL injection vulnerabilities (parameterization, string concatenation)
2. Dangerous operations (DROP, DELETE, TRUNCATE, UPDATE, ALTER, CREATE)
3. Unauthorized data access attempts

CORRECTNESS CHECKS:
4. Syntax errors specific to %s
5. Invalid table or column references against schema
6. Missing or incorrect JOIN conditions
7. Aggregation without proper GROUP BY

PERFORMANCE CHECKS:
8. Cartesian products (missing JOIN conditions)
9. SELECT * on large tables

Return ONLY a JSON object:
{
    "valid": true,
    "issues": ["Specific, actionable issue descriptions"],
    "severity": "low",
    "suggestions": ["Concrete improvement recommendations"],
    "safe_to_execute": true
}

Response:`, kind, renderSchema(schema), query, kind)
}

func analysisPrompt(question string, rs *store.ResultSet) string {
	return fmt.Sprintf(`You are a professional data analyst creating executive-level insights for business stakeholders.

Original Question: %s

Data Summary:
%s

Provide a comprehensive JSON analysis:
{
    "summary": "Executive summary with key findings, specific numbers, and business impact (2-3 sentences)",
    "key_metrics": [
        {"metric": "Clear Metric Name", "value": "actual value from data", "unit": "units (e.g., USD, items, percent)"}
    ],
    "visualizations": [
        {
            "type": "bar|line|pie|horizontal_bar",
            "x_col": "exact_column_name_from_data",
            "y_col": "exact_column_name_from_data",
            "title": "Professional, descriptive chart title",
            "description": "Business context: what this visualization reveals"
        }
    ],
    "insights": ["Actionable insight with business context", "Trend or pattern identified"]
}

PROFESSIONAL STANDARDS:
1. Use EXACT column names from the data (case-sensitive)
2. Suggest 1-2 visualizations maximum (only the most impactful)
3. Choose visualization types based on data:
   - Bar/Horizontal Bar: comparisons, rankings, categories
   - Line: trends over time, sequential data
   - Pie: proportions (only if 3-6 categories)
4. Use plain ASCII text only (no bullets, emojis, or special characters)
5. Ensure all metrics have proper units and context

Response:`, question, summarizeResults(rs))
}

// summarizeResults renders a compact textual view of the result set for the
// analysis prompt: shape, columns and the first few rows.
func summarizeResults(rs *store.ResultSet) string {
	if rs.Empty() {
		return "No rows."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shape: %d rows x %d columns\n", len(rs.Rows), len(rs.Columns))
	fmt.Fprintf(&b, "Columns: %s\n\n", strings.Join(rs.Columns, ", "))
	b.WriteString("Sample Data (first rows):\n")

	limit := len(rs.Rows)
	if limit > 3 {
		limit = 3
	}
	b.WriteString(strings.Join(rs.Columns, " | "))
	b.WriteString("\n")
	for _, row := range rs.Rows[:limit] {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	return b.String()
}

// stripSQLFences removes markdown fences the model sometimes wraps around a
// generated query.
func stripSQLFences(text string) string {
	out := strings.TrimSpace(text)
	out = strings.TrimPrefix(out, "```sql")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
