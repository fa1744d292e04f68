package domain

// Record is an immutable knowledge-base entry.
type Record struct {
	ID       int      `yaml:"id" json:"id"`
	Category string   `yaml:"category" json:"category"`
	Title    string   `yaml:"title" json:"title"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Answer   string   `yaml:"answer" json:"answer"`
}
