package common

import (
	"github.com/google/uuid"
)

// NewMaterialID generates a unique material ID with the "mat_" prefix
func NewMaterialID() string {
	return "mat_" + uuid.New().String()
}

// NewTopicID generates a unique topic ID with the "top_" prefix
func NewTopicID() string {
	return "top_" + uuid.New().String()
}

// NewQuestionID generates a unique question ID with the "qst_" prefix
func NewQuestionID() string {
	return "qst_" + uuid.New().String()
}

// NewJobID generates a unique job ID with the "job_" prefix
func NewJobID() string {
	return "job_" + uuid.New().String()
}
