package models

// Schema is applied in order at startup; every statement is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
    id VARCHAR(36) PRIMARY KEY,
    project_name TEXT NOT NULL,
    project_type VARCHAR(20) NOT NULL,
    location TEXT NOT NULL,
    latitude DOUBLE PRECISION,
    longitude DOUBLE PRECISION,
    square_feet INT NOT NULL DEFAULT 0,
    per_house_cost BIGINT NOT NULL DEFAULT 0,
    total_wings INT NOT NULL DEFAULT 0,
    total_floors INT NOT NULL DEFAULT 0,
    per_floor_house INT NOT NULL DEFAULT 0,
    total_plots INT NOT NULL DEFAULT 0,
    amenities TEXT[] NOT NULL DEFAULT '{}',
    images TEXT[] NOT NULL DEFAULT '{}',
    floor_plans TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS houses (
    project_id VARCHAR(36) NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    house_number VARCHAR(32) NOT NULL,
    position INT NOT NULL DEFAULT 0,
    square_feet INT NOT NULL DEFAULT 0,
    price BIGINT NOT NULL DEFAULT 0,
    price_per_sq_feet BIGINT NOT NULL DEFAULT 0,
    status_override VARCHAR(20),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (project_id, house_number)
)`,
	`CREATE TABLE IF NOT EXISTS bookings (
    id VARCHAR(36) PRIMARY KEY,
    booking_code VARCHAR(32) NOT NULL UNIQUE,
    project_id VARCHAR(36) NOT NULL,
    house_number VARCHAR(32) NOT NULL,
    customer_name TEXT NOT NULL,
    mobile_no VARCHAR(10) NOT NULL,
    payment_type VARCHAR(10) NOT NULL,
    total_amount BIGINT NOT NULL CHECK (total_amount > 0),
    advance_payment BIGINT NOT NULL CHECK (advance_payment > 0 AND advance_payment <= total_amount),
    booking_date DATE NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    FOREIGN KEY (project_id, house_number) REFERENCES houses(project_id, house_number) ON DELETE CASCADE,
    UNIQUE (project_id, house_number)
)`,
	`CREATE TABLE IF NOT EXISTS payments (
    id VARCHAR(36) PRIMARY KEY,
    booking_id VARCHAR(36) NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
    seq BIGSERIAL,
    amount_received BIGINT NOT NULL CHECK (amount_received > 0),
    payment_method VARCHAR(10) NOT NULL,
    payment_details JSONB NOT NULL DEFAULT '{}',
    payment_received_date DATE NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_booking_id ON payments (booking_id, payment_received_date, seq)`,
	`CREATE TABLE IF NOT EXISTS services (
    id VARCHAR(36) PRIMARY KEY,
    title TEXT NOT NULL,
    short_description TEXT NOT NULL,
    description TEXT NOT NULL,
    image TEXT NOT NULL DEFAULT '',
    features TEXT[] NOT NULL DEFAULT '{}',
    amenities TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
)`,
}
