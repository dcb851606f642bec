package auth

import "testing"

func TestUserFromLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		resp            LoginResponse
		credentialEmail string
		want            User
	}{
		{
			name: "legacy payload with userType and fullName",
			resp: LoginResponse{
				Token:    "tok1",
				UserType: "MANAGER",
				Username: "a",
				FullName: "Alice B",
			},
			credentialEmail: "a@b.com",
			want: User{
				ID:        "0",
				FullName:  "Alice B",
				FirstName: "Alice",
				LastName:  "B",
				Email:     "a@b.com",
				Role:      RoleManager,
			},
		},
		{
			name: "current payload wins over legacy fields",
			resp: LoginResponse{
				Role:      "ROLE_HR",
				UserType:  "EMPLOYEE",
				FullName:  "Carol Jones",
				Name:      "cj",
				FirstName: "Carol",
				LastName:  "Jones",
				Email:     "carol@worksphere.com",
				UserID:    "17",
			},
			credentialEmail: "other@worksphere.com",
			want: User{
				ID:        "17",
				FullName:  "Carol Jones",
				FirstName: "Carol",
				LastName:  "Jones",
				Email:     "carol@worksphere.com",
				Role:      RoleHR,
			},
		},
		{
			name: "name parts assembled into full name",
			resp: LoginResponse{
				Role:      "EMPLOYEE",
				FirstName: "Dave",
				LastName:  "Lee Smith",
			},
			credentialEmail: "dave@b.com",
			want: User{
				ID:        "0",
				FullName:  "Dave Lee Smith",
				FirstName: "Dave",
				LastName:  "Lee Smith",
				Email:     "dave@b.com",
				Role:      RoleEmployee,
			},
		},
		{
			name: "bare username fallback",
			resp: LoginResponse{
				UserType: "ADMIN",
				Username: "root",
			},
			credentialEmail: "root@b.com",
			want: User{
				ID:        "0",
				FullName:  "root",
				FirstName: "root",
				Email:     "root@b.com",
				Role:      RoleAdmin,
			},
		},
		{
			name: "employee id carried through",
			resp: LoginResponse{
				Role:       "EMPLOYEE",
				FullName:   "Eve K",
				EmployeeID: "EMP003",
				UserID:     "5",
			},
			credentialEmail: "eve@b.com",
			want: User{
				ID:         "5",
				FullName:   "Eve K",
				FirstName:  "Eve",
				LastName:   "K",
				Email:      "eve@b.com",
				Role:       RoleEmployee,
				EmployeeID: "EMP003",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := UserFromLogin(&tt.resp, tt.credentialEmail)
			if got != tt.want {
				t.Errorf("UserFromLogin() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
