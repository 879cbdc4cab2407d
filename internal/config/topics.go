package config

const (
	// TopicEmbedGenerate is the NSQ topic carrying embedding requests for
	// previously-crawled documents.
	TopicEmbedGenerate = "embeddings.generate"

	// ChannelEmbedder is the consumer channel for the embedding worker.
	ChannelEmbedder = "embedder"
)
