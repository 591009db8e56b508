package schema

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/account-service/internal/domain"
)

func TestParse_OrderAndDefaults(t *testing.T) {
	doc := `{
	  "fields": [
	    {"name": "b", "required": true, "validators": [{"rule": "min=1"}]},
	    {"name": "a", "type": "int"}
	  ]
	}`
	s, err := Parse(KindLogin, []byte(doc), nil)
	require.NoError(t, err)

	require.Len(t, s.Fields, 2)
	assert.Equal(t, "b", s.Fields[0].Name)
	assert.Equal(t, "a", s.Fields[1].Name)
	assert.Equal(t, TypeString, s.Fields[0].Type)
	assert.Equal(t, TypeInt, s.Fields[1].Type)
	assert.Equal(t, DefaultRequiredMessage, s.Fields[0].RequiredMessage)
	assert.Equal(t, DefaultRuleMessage, s.Fields[0].Validators[0].Message)

	f, ok := s.Field("a")
	require.True(t, ok)
	assert.Equal(t, "a", f.Name)
	assert.False(t, s.Has("zzz"))
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"duplicate":      `{"fields":[{"name":"a"},{"name":"a"}]}`,
		"unknown type":   `{"fields":[{"name":"a","type":"float"}]}`,
		"unknown op":     `{"fields":[{"name":"a","sanitizers":["rot13"]}]}`,
		"empty rule":     `{"fields":[{"name":"a","validators":[{"message":"X"}]}]}`,
		"unknown ref":    `{"fields":[{"name":"a","validators":[{"rule":"eqcsfield","field":"b"}]}]}`,
		"unknown key":    `{"fields":[], "extra": true}`,
		"nameless":       `{"fields":[{"type":"string"}]}`,
		"empty honeypot": `{"honeypot":{"value":"x"},"fields":[]}`,
		"not json":       `{`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(KindRegister, []byte(doc), nil)
			assert.Error(t, err)
		})
	}
}

func TestParse_TagCheckerRuns(t *testing.T) {
	doc := `{"fields":[
	  {"name":"p"},
	  {"name":"a","validators":[{"rule":"min=1"},{"rule":"eqcsfield","field":"p"}]}
	]}`

	var seen []string
	var cross []bool
	check := func(tag string, isCross bool) error {
		seen = append(seen, tag)
		cross = append(cross, isCross)
		return nil
	}
	_, err := Parse(KindRegister, []byte(doc), check)
	require.NoError(t, err)
	assert.Equal(t, []string{"min=1", "eqcsfield"}, seen)
	assert.Equal(t, []bool{false, true}, cross)

	boom := errors.New("bad tag")
	_, err = Parse(KindRegister, []byte(doc), func(string, bool) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestDefaults_AllKindsLoad(t *testing.T) {
	repo, err := NewRepository(Defaults(), nil)
	require.NoError(t, err)

	reg, err := repo.Load(KindRegister)
	require.NoError(t, err)
	require.NotNil(t, reg.Honeypot)
	assert.Equal(t, "spiderbro", reg.Honeypot.Field)
	assert.Equal(t, "http://", reg.Honeypot.Value)
	assert.True(t, reg.IsControlField("csrf_token"))

	login, err := repo.Load(KindLogin)
	require.NoError(t, err)
	assert.Nil(t, login.Honeypot)

	settings, err := repo.Load(KindAccountSettings)
	require.NoError(t, err)
	pw, ok := settings.Field("password")
	require.True(t, ok)
	assert.False(t, pw.Required)
	assert.Empty(t, pw.Sanitizers, "passwords must never be transformed")
}

func TestRepository_MissingDocument(t *testing.T) {
	fsys := fstest.MapFS{
		"login.json": {Data: []byte(`{"fields":[]}`)},
	}
	_, err := NewRepository(fsys, nil)
	require.Error(t, err)
	assert.True(t, domain.Is(err, "schema_not_found"))
}

func TestRepository_UnknownKind(t *testing.T) {
	repo, err := NewRepository(Defaults(), nil)
	require.NoError(t, err)

	_, err = repo.Load(Kind("password-reset"))
	assert.True(t, domain.Is(err, "schema_not_found"))
}

func TestDir_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	fsys := Dir(dir)
	_, err := NewRepository(fsys, nil)
	assert.Error(t, err, "empty override dir has no schemas")

	assert.NotNil(t, Dir(""))
}
