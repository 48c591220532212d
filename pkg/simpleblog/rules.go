package simpleblog

import (
	"encoding/json"

	"github.com/tendant/simple-blog/pkg/simpleblog/validation"
)

// AuthorCreateRules validate a new author payload.
var AuthorCreateRules = validation.Ruleset{
	{Field: "name", Required: true, Kind: validation.KindString, Message: "First name is mandatory field"},
	{Field: "surname", Required: true, Kind: validation.KindString, Message: "Surname is mandatory field"},
	{Field: "email", Required: true, Kind: validation.KindEmail, Message: "Email is mandatory"},
	{Field: "dateOfBirth", Required: true, Kind: validation.KindISODate, Message: "Date of birth is mandatory field, YYYY-MM-DD format"},
	{Field: "avatar", Kind: validation.KindURL, Message: "Avatar must be a link"},
}

// AuthorUpdateRules validate an author patch. Every field is optional.
var AuthorUpdateRules = validation.Ruleset{
	{Field: "name", Kind: validation.KindString, Message: "First name must be a string"},
	{Field: "surname", Kind: validation.KindString, Message: "Surname must be a string"},
	{Field: "email", Kind: validation.KindEmail, Message: "Email must be a valid address"},
	{Field: "dateOfBirth", Kind: validation.KindISODate, Message: "Date of birth must use YYYY-MM-DD format"},
	{Field: "avatar", Kind: validation.KindURL, Message: "Avatar must be a link"},
}

// BlogPostCreateRules validate a new blog post payload.
var BlogPostCreateRules = validation.Ruleset{
	{Field: "category", Required: true, Kind: validation.KindString, Message: "Category is mandatory field"},
	{Field: "title", Required: true, Kind: validation.KindString, Message: "Title is mandatory field"},
	{Field: "cover", Kind: validation.KindURL, Message: "Cover must be a link"},
	{Field: "readTime", Required: true, Kind: validation.KindObject, Message: "Read time is mandatory field"},
	{Field: "readTime.value", Required: true, Kind: validation.KindInteger, Min: validation.MinValue(0), Message: "Readtime value is mandatory field"},
	{Field: "readTime.unit", Required: true, Kind: validation.KindString, Message: "Readtime unit is mandatory field"},
	{Field: "author", Required: true, Kind: validation.KindObject, Message: "Author is mandatory field"},
	{Field: "author.name", Required: true, Kind: validation.KindString, Message: "Author name is mandatory"},
	{Field: "author.avatar", Required: true, Kind: validation.KindURL, Message: "Author avatar is mandatory field"},
	{Field: "content", Required: true, Kind: validation.KindString, Message: "Content is mandatory field"},
}

// BlogPostUpdateRules validate a blog post patch. Nested objects replace the
// stored value as a whole, so their fields are required when present.
var BlogPostUpdateRules = validation.Ruleset{
	{Field: "category", Kind: validation.KindString, Message: "Category must be a string"},
	{Field: "title", Kind: validation.KindString, Message: "Title must be a string"},
	{Field: "cover", Kind: validation.KindURL, Message: "Cover must be a link"},
	{Field: "readTime", Kind: validation.KindObject, Message: "Read time must be an object"},
	{Field: "readTime.value", Required: true, Kind: validation.KindInteger, Min: validation.MinValue(0), Message: "Readtime value is mandatory field"},
	{Field: "readTime.unit", Required: true, Kind: validation.KindString, Message: "Readtime unit is mandatory field"},
	{Field: "author", Kind: validation.KindObject, Message: "Author must be an object"},
	{Field: "author.name", Required: true, Kind: validation.KindString, Message: "Author name is mandatory"},
	{Field: "author.avatar", Required: true, Kind: validation.KindURL, Message: "Author avatar is mandatory field"},
	{Field: "content", Kind: validation.KindString, Message: "Content must be a string"},
}

// CommentRules validate a new comment payload.
var CommentRules = validation.Ruleset{
	{Field: "name", Required: true, Kind: validation.KindString, Message: "Name is mandatory field"},
	{Field: "message", Required: true, Kind: validation.KindString, Message: "Message is mandatory field"},
}

// CheckEmailRules validate an email existence query.
var CheckEmailRules = validation.Ruleset{
	{Field: "email", Required: true, Kind: validation.KindString, Message: "Email is mandatory"},
}

// validateRequest runs rules against the JSON form of a typed request.
func validateRequest(op string, rules validation.Ruleset, req any) error {
	doc, err := toDocument(req)
	if err != nil {
		return err
	}
	return newValidationError(op, rules.Validate(doc))
}

func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
