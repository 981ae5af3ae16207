package extractattributes

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	RawResponse string `json:"rawResponse"`
}
