package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/lens-lookup-service/internal/entity"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		wantErr bool
	}{
		{name: "png", image: "data:image/png;base64,iVBORw0KGgo="},
		{name: "jpeg", image: "data:image/jpeg;base64,/9j/4AAQSkZJRg=="},
		{name: "jpg", image: "data:image/jpg;base64,/9j/4AAQSkZJRg=="},
		{name: "empty", image: "", wantErr: true},
		{name: "gif is not accepted", image: "data:image/gif;base64,R0lGODlh", wantErr: true},
		{name: "missing data prefix", image: "iVBORw0KGgo=", wantErr: true},
		{name: "url instead of payload", image: "https://example.com/cover.png", wantErr: true},
		{name: "not base64", image: "data:image/png;base64,@@@not-base64@@@", wantErr: true},
		{name: "empty payload", image: "data:image/png;base64,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.image)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrInvalidInput)
			assert.True(t, IsClientError(err))
		})
	}
}
