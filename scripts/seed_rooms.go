package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"roombook/internal/database"
	"roombook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Seed file shape:
//
//	rooms:
//	  - id: "room-blue"
//	    name: "Blue Room"
//	    capacity: 8
//	    owner_id: "user-admin"
//	users:
//	  - id: "user-admin"
//	    name: "Admin"
//	    role: "admin"
//	    max_booking_duration: 480
//	    can_book_multiple_rooms: true
type seedFile struct {
	Rooms []seedRoom `yaml:"rooms"`
	Users []seedUser `yaml:"users"`
}

type seedRoom struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Capacity int64  `yaml:"capacity"`
	OwnerID  string `yaml:"owner_id"`
	IsActive *bool  `yaml:"is_active"` // omitted means active
}

type seedUser struct {
	ID                   string `yaml:"id"`
	Name                 string `yaml:"name"`
	Email                string `yaml:"email"`
	Role                 string `yaml:"role"`
	MaxBookingDuration   int64  `yaml:"max_booking_duration"`
	CanBookMultipleRooms bool   `yaml:"can_book_multiple_rooms"`
}

// parseSeed decodes the seed yaml and applies defaults: active rooms,
// the user role and a 480-minute booking limit.
func parseSeed(data []byte) ([]models.Room, []models.User, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parse seed: %w", err)
	}
	if len(f.Rooms) == 0 && len(f.Users) == 0 {
		return nil, nil, fmt.Errorf("no rooms or users in seed yaml")
	}

	rooms := make([]models.Room, 0, len(f.Rooms))
	for _, r := range f.Rooms {
		room := models.Room{
			ID:       r.ID,
			Name:     r.Name,
			Capacity: r.Capacity,
			OwnerID:  r.OwnerID,
			IsActive: r.IsActive == nil || *r.IsActive,
		}
		rooms = append(rooms, room)
	}

	users := make([]models.User, 0, len(f.Users))
	for _, u := range f.Users {
		user := models.User{
			ID:                   u.ID,
			Name:                 u.Name,
			Email:                u.Email,
			Role:                 u.Role,
			MaxBookingDuration:   u.MaxBookingDuration,
			CanBookMultipleRooms: u.CanBookMultipleRooms,
		}
		if user.Role == "" {
			user.Role = models.RoleUser
		}
		if user.MaxBookingDuration == 0 {
			user.MaxBookingDuration = 480
		}
		users = append(users, user)
	}

	return rooms, users, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("seed", "configs/seed.yaml", "path to seed yaml")
		dbPath   = flag.String("db", "data/roombook.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	rooms, users, err := parseSeed(data)
	if err != nil {
		return err
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	usersCreated := 0
	for i := range users {
		u := &users[i]
		if u.ID == "" || u.Name == "" {
			continue
		}
		_, err = db.GetUser(ctx, u.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, database.ErrUserNotFound) {
			return fmt.Errorf("get user %s: %w", u.ID, err)
		}
		if err = db.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create user %s: %w", u.ID, err)
		}
		usersCreated++
	}

	roomsCreated := 0
	for i := range rooms {
		r := &rooms[i]
		if r.Name == "" {
			continue
		}
		if r.ID != "" {
			_, err = db.GetRoom(ctx, r.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, database.ErrRoomNotFound) {
				return fmt.Errorf("get room %s: %w", r.ID, err)
			}
		}
		if err = db.CreateRoom(ctx, r); err != nil {
			return fmt.Errorf("create room %s: %w", r.Name, err)
		}
		roomsCreated++
	}

	fmt.Printf("done: users=%d rooms=%d\n", usersCreated, roomsCreated)
	return nil
}
