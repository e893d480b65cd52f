package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Candidate struct {
	ID             string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FullName       string `gorm:"column:full_name;type:text" json:"full_name"`
	Email          string `gorm:"column:email;type:text;index" json:"email"`
	TargetPosition string `gorm:"column:target_position;type:text" json:"target_position"`

	ResumeText string         `gorm:"column:resume_text;type:text" json:"resume_text"`
	Skills     pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`

	// JSONB, structure follows whatever the resume parser produced
	Experience datatypes.JSON `gorm:"column:experience;type:jsonb" json:"experience"`
	Projects   datatypes.JSON `gorm:"column:projects;type:jsonb" json:"projects"`

	// Nil until an embedding is supplied; a zero Vector would serialize as
	// "[]", which the vector(768) column rejects.
	ResumeEmbedding *pgvector.Vector `gorm:"column:resume_embedding;type:vector(768)" json:"resume_embedding,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Candidate) TableName() string { return "candidates" }

type ResumeFile struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CandidateID string `gorm:"column:candidate_id;type:uuid;index" json:"candidate_id"`
	FileName    string `gorm:"column:file_name;type:text" json:"file_name"`
	FilePath    string `gorm:"column:file_path;type:text" json:"file_path"` // object key in the bucket

	FileSize int    `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType string `gorm:"column:mime_type;type:text" json:"mime_type"`

	UploadedAt time.Time `gorm:"column:uploaded_at;type:timestamptz" json:"uploaded_at"`
}

func (ResumeFile) TableName() string { return "resume_files" }
