package dto

// ExportRequest holds the query parameters for a history export.
type ExportRequest struct {
	Format string `form:"format,default=csv" binding:"omitempty,oneof=csv json xlsx"`
	Model  string `form:"model"`
	Limit  int    `form:"limit,default=1000" binding:"min=1,max=10000"`
}

// ExportResult is a rendered export ready to stream as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}
