package identity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"docverify/pkg/identity"
)

type IdentitySuite struct {
	suite.Suite
}

func TestIdentitySuite(t *testing.T) {
	suite.Run(t, new(IdentitySuite))
}

func (s *IdentitySuite) TestNewFields() {
	s.Run("drops non-canonical keys", func() {
		f := identity.NewFields(map[string]string{
			identity.Surname: "ERIKSSON",
			"eye_color":      "BLU",
		})
		s.Equal([]string{identity.Surname}, f.Names())
	})

	s.Run("drops blank values", func() {
		f := identity.NewFields(map[string]string{
			identity.Surname:     "  ",
			identity.DateOfBirth: "1974-08-12",
		})
		s.Len(f, 1)
		s.Equal("1974-08-12", f[identity.DateOfBirth])
	})

	s.Run("raw returns an independent copy", func() {
		f := identity.NewFields(map[string]string{identity.Sex: "F"})
		raw := f.Raw()
		raw[identity.Sex] = "M"
		s.Equal("F", f[identity.Sex])
	})
}

func (s *IdentitySuite) TestSchema() {
	s.Len(identity.Schema(), 9)
	s.True(identity.IsCanonical(identity.Address))
	s.False(identity.IsCanonical("last_name"))
}

func (s *IdentitySuite) TestHashing() {
	fields := identity.NewFields(map[string]string{
		identity.Surname:     "ERIKSSON",
		identity.DateOfBirth: "1974-08-12",
	})

	s.Run("field hash matches salted sha256 contract", func() {
		s.Equal("121f23f61b3206b4895d3033764e000a8f472249650ff27c4b18f192a938dee9",
			identity.HashField("s3cr3t", identity.Surname, "ERIKSSON"))
	})

	s.Run("combined hash joins sorted pairs", func() {
		s.Equal("10f608743a49c7cc481441de5f460377c1ec1d473a446a570198723403b980d4",
			identity.CombinedHash("s3cr3t", fields))
	})

	s.Run("hash never carries plaintext", func() {
		h := identity.Hash("s3cr3t", fields)
		s.Len(h.Fields, 2)
		for _, v := range h.Fields {
			s.NotContains(v, "ERIKSSON")
			s.Len(v, 64)
		}
	})

	s.Run("different salts produce different hashes", func() {
		s.NotEqual(identity.CombinedHash("a", fields), identity.CombinedHash("b", fields))
	})

	s.Run("IsHash recognises digests", func() {
		s.True(identity.IsHash(identity.CombinedHash("s3cr3t", fields)))
		s.False(identity.IsHash("not-a-hash"))
		s.False(identity.IsHash(strings.Repeat("A", 64)))
	})
}
