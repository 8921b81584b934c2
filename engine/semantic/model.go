package semantic

// ProductRecord is a single product vector to store in Qdrant.
type ProductRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any // title, price, image, link, brand
}
