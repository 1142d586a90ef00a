package models

import (
	"strings"
	"time"

	"github.com/DeveloperForam/test-house-design/internal/money"
)

type ProjectType string

const (
	ProjectTypeFlat     ProjectType = "flat"
	ProjectTypeBungalow ProjectType = "bungalow"
	ProjectTypeRowHouse ProjectType = "row-house"
)

// ParseProjectType normalises input, accepting the legacy "banglow" spelling.
func ParseProjectType(s string) (ProjectType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat":
		return ProjectTypeFlat, true
	case "bungalow", "banglow":
		return ProjectTypeBungalow, true
	case "row-house", "rowhouse", "row_house":
		return ProjectTypeRowHouse, true
	}
	return "", false
}

// HasPlots reports whether the type is laid out in plots rather than wings and floors.
func (t ProjectType) HasPlots() bool {
	return t == ProjectTypeBungalow || t == ProjectTypeRowHouse
}

// Project is a real estate development
type Project struct {
	ID             string      `json:"id" db:"id"`
	ProjectName    string      `json:"projectName" db:"project_name"`
	ProjectType    ProjectType `json:"projectType" db:"project_type"`
	Location       string      `json:"location" db:"location"`
	Latitude       *float64    `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64    `json:"longitude,omitempty" db:"longitude"`
	SquareFeet     int         `json:"squareFeet" db:"square_feet"`
	PerHouseCost   money.Money `json:"perHouseCost" db:"per_house_cost"`
	TotalWings     int         `json:"totalWings,omitempty" db:"total_wings"`
	TotalFloors    int         `json:"totalFloors,omitempty" db:"total_floors"`
	PerFloorHouse  int         `json:"perFloorHouse,omitempty" db:"per_floor_house"`
	TotalPlots     int         `json:"totalPlots,omitempty" db:"total_plots"`
	Amenities      []string    `json:"amenities" db:"amenities"`
	Images         []string    `json:"images" db:"images"`
	FloorPlans     []string    `json:"floorPlans" db:"floor_plans"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
	TotalHouse     int         `json:"totalHouse" db:"-"`
	TotalHouseCost money.Money `json:"totalHouseCost" db:"-"`
}

// HouseCount is the number of houses the project's structure yields.
func (p *Project) HouseCount() int {
	if p.ProjectType.HasPlots() {
		return p.TotalPlots
	}
	return p.TotalWings * p.TotalFloors * p.PerFloorHouse
}

// Normalize clears the structure fields that do not belong to the project type
// and fills the derived totals.
func (p *Project) Normalize() {
	if p.ProjectType.HasPlots() {
		p.TotalWings, p.TotalFloors, p.PerFloorHouse = 0, 0, 0
	} else {
		p.TotalPlots = 0
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.FloorPlans == nil {
		p.FloorPlans = []string{}
	}
	p.TotalHouse = p.HouseCount()
	p.TotalHouseCost = money.Money(int64(p.TotalHouse) * p.PerHouseCost.Paise())
}

// ProjectRequest is the create/update form. It binds from JSON or multipart fields.
type ProjectRequest struct {
	ProjectName   string   `json:"projectName" form:"projectName" binding:"required"`
	ProjectType   string   `json:"projectType" form:"projectType" binding:"required"`
	Location      string   `json:"location" form:"location" binding:"required"`
	Latitude      *float64 `json:"latitude" form:"latitude"`
	Longitude     *float64 `json:"longitude" form:"longitude"`
	SquareFeet    int      `json:"squareFeet" form:"squareFeet" binding:"min=0"`
	PerHouseCost  string   `json:"-" form:"perHouseCost"`
	TotalWings    int      `json:"totalWings" form:"totalWings" binding:"min=0"`
	TotalFloors   int      `json:"totalFloors" form:"totalFloors" binding:"min=0"`
	PerFloorHouse int      `json:"perFloorHouse" form:"perFloorHouse" binding:"min=0"`
	TotalPlots    int      `json:"totalPlots" form:"totalPlots" binding:"min=0"`
	Amenities     []string `json:"amenities" form:"amenities"`

	// PerHouseCostJSON carries the JSON variant of perHouseCost, which may be a number or a string.
	PerHouseCostJSON interface{} `json:"perHouseCost" form:"-"`
}

// RawPerHouseCost returns whichever per-house cost field was bound.
func (r *ProjectRequest) RawPerHouseCost() interface{} {
	if r.PerHouseCostJSON != nil {
		return r.PerHouseCostJSON
	}
	return r.PerHouseCost
}
