package normalization

// Typed schemas of the nested list cells found in the movies and credits datasets.

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Country struct {
	Code string `json:"iso_3166_1"`
	Name string `json:"name"`
}

type Language struct {
	Code string `json:"iso_639_1"`
	Name string `json:"name"`
}

type CastMember struct {
	ID        int64  `json:"id"`
	CastID    int64  `json:"cast_id"`
	CreditID  string `json:"credit_id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int64  `json:"order"`
	Gender    int64  `json:"gender"`
}

type CrewMember struct {
	ID         int64  `json:"id"`
	CreditID   string `json:"credit_id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
	Gender     int64  `json:"gender"`
}
