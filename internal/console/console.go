package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	models "github.com/pedalhub/pedalhub/internal"
	"github.com/pedalhub/pedalhub/internal/ports"
)

// errInputClosed ends the session the same way the Exit choice does.
var errInputClosed = errors.New("input closed")

type FieldValidator interface {
	Var(field interface{}, tag string) error
}

type Console struct {
	in       *bufio.Scanner
	out      io.Writer
	ledger   ports.LedgerService
	auth     ports.Authenticator
	exporter ports.HistoryExporter
	validate FieldValidator
}

func New(in io.Reader, out io.Writer, ledger ports.LedgerService, auth ports.Authenticator,
	exporter ports.HistoryExporter, validate FieldValidator) *Console {
	return &Console{
		in:       bufio.NewScanner(in),
		out:      out,
		ledger:   ledger,
		auth:     auth,
		exporter: exporter,
		validate: validate,
	}
}

// Run drives the main menu until Exit, end of input or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	c.println("\n\nLooking for a bike to rent for a day? Welcome to PEDALHUB!")
	c.println("Your go-to destination for convenient, eco-friendly, and affordable bike rentals.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.mainMenu()
		choice, err := c.readChoice("Enter your choice (1-4): ")
		if err != nil {
			return ignoreClosed(err)
		}

		switch choice {
		case 1:
			c.viewBikes()
		case 2:
			err = c.rentBike(ctx)
		case 3:
			err = c.adminDashboard(ctx)
		case 4:
			c.println("\nThank you for choosing PedalHub! See you next time!")
			return nil
		default:
			c.println("Invalid choice. Try again.")
		}
		if err != nil {
			return ignoreClosed(err)
		}
	}
}

func (c *Console) mainMenu() {
	c.println("\n=========================================")
	c.println("|   --- PedalHub (Bike Rental System) ---")
	c.println("|   [1] View Bikes")
	c.println("|   [2] Rent a Bike")
	c.println("|   [3] Admin Dashboard")
	c.println("|   [4] Exit")
	c.println("=========================================")
}

func (c *Console) viewBikes() {
	c.printSizeChart()

	c.println("\n--- List of Bikes ---")
	bikes := c.ledger.Bikes()
	if len(bikes) == 0 {
		c.println("No bikes available at the moment.")
		return
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Bike ID\tType\tSize\tColor\tRental Price (per hour)\tAvailable")
	for _, bike := range bikes {
		available := "No"
		if bike.Available {
			available = "Yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\tPhp %.2f\t%s\n",
			bike.BikeID, bike.BikeType, bike.Size, bike.Color, bike.RentalPrice, available)
	}
	tw.Flush()
}

func (c *Console) printSizeChart() {
	c.println("\n--- Bike Size Chart ---")
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Rider height (cm)\tFrame size (cm)\tStated size")
	for _, row := range [][3]string{
		{"120-135", "18-20", "XXS"},
		{"135-145", "22-24", "XS"},
		{"148-158", "13-15", "S"},
		{"158-165", "15-17", "M"},
		{"160-175", "17-18", "L"},
		{"175-185", "19-20", "XL"},
		{"185-200", "21-22", "XXL"},
	} {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row[0], row[1], row[2])
	}
	fmt.Fprintln(tw, "\t\t")
	fmt.Fprintln(tw, "Rider age\tRider height (cm)\tWheel size")
	for _, row := range [][3]string{
		{"4-6", "110-120", "16\" (S)"},
		{"5-8", "115-135", "20\" (M)"},
		{"8-11", "135-145", "24\" (L)"},
	} {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row[0], row[1], row[2])
	}
	tw.Flush()
}

func (c *Console) rentBike(ctx context.Context) error {
	c.println("\n--- Rent a Bike ---")
	if len(c.ledger.Bikes()) == 0 {
		c.println("No bikes available to rent. Please check again later.")
		return nil
	}

	bikeID, err := c.readLine("Enter Bike ID to rent: ")
	if err != nil {
		return err
	}
	bike, found := c.ledger.FindBike(bikeID)
	if !found {
		c.println("Bike not found.")
		return nil
	}
	if !bike.Available {
		c.printf("Bike ID %s is currently not available for rent. Please select a different bike.\n", bikeID)
		return nil
	}

	c.println("\n--- Customer Details ---")
	firstName, err := c.readValid("Enter your First Name: ", "required,letters",
		"Invalid input. First name cannot be empty and must contain letters only.")
	if err != nil {
		return err
	}
	lastName, err := c.readValid("Enter your Last Name: ", "required,letters",
		"Invalid input. Last name cannot be empty and must contain letters only.")
	if err != nil {
		return err
	}
	phone, err := c.readValid("Enter your Phone Number: ", "required,digits",
		"Invalid input. Phone number cannot be empty and must contain digits only.")
	if err != nil {
		return err
	}

	hours, err := c.readDuration()
	if err != nil {
		return err
	}

	booking, err := c.ledger.CreateRental(ctx, models.RentalRequest{
		BikeID:    bike.BikeID,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Hours:     hours,
	})
	if err != nil {
		c.println(describe(err))
		return nil
	}

	c.printf("Rental duration: %.2f hours\n", booking.RentalHours)
	c.printf("\nRental confirmed. Bike %s has been rented by %s.\nTotal Cost: Php %.2f\n",
		booking.BikeID, booking.Customer.FirstName, booking.TotalCost)
	return nil
}

// readDuration asks for hours or minutes and returns hours.
func (c *Console) readDuration() (float64, error) {
	c.println("\nChoose the rental duration:")
	c.println("[1] Hours")
	c.println("[2] Minutes")

	var unit int
	for {
		choice, err := c.readChoice("Select an option (1 or 2): ")
		if err != nil {
			return 0, err
		}
		if choice == 1 || choice == 2 {
			unit = choice
			break
		}
		c.println("Invalid choice. Please select 1 or 2 for the type of rental duration.")
	}

	label := "Enter duration in hours: "
	if unit == 2 {
		label = "Enter duration in minutes: "
	}
	for {
		amount, err := c.readFloat(label)
		if err != nil {
			return 0, err
		}
		if amount > 0 {
			if unit == 2 {
				return models.MinutesToHours(amount), nil
			}
			return amount, nil
		}
		c.println("Rental duration must be greater than zero.")
	}
}

func (c *Console) adminDashboard(ctx context.Context) error {
	c.println("\n--- Admin Login ---")
	username, err := c.readLine("Enter Admin Username: ")
	if err != nil {
		return err
	}
	password, err := c.readLine("Enter Admin Password: ")
	if err != nil {
		return err
	}
	if !c.auth.Authenticate(username, password) {
		c.println("Access Denied. Returning to Main Menu...")
		return nil
	}

	for {
		c.println("\n=========================================")
		c.println("|   --- Admin Dashboard ---")
		c.println("|   [1] Add New Bike")
		c.println("|   [2] Delete Bike")
		c.println("|   [3] Mark Rentals as Completed")
		c.println("|   [4] View Rentals")
		c.println("|   [5] Export Rental History")
		c.println("|   [6] Back To Main Menu")
		c.println("=========================================")

		choice, err := c.readChoice("Enter your choice (1-6): ")
		if err != nil {
			return err
		}
		switch choice {
		case 1:
			err = c.addBike(ctx)
		case 2:
			err = c.deleteBike(ctx)
		case 3:
			err = c.markCompleted(ctx)
		case 4:
			err = c.viewRentals(ctx)
		case 5:
			c.exportHistory()
		case 6:
			c.println("Returning to Main Menu...")
			return nil
		default:
			c.println("Invalid choice. Try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) addBike(ctx context.Context) error {
	c.viewBikes()
	c.println("\n--- Add Bike ---")

	var req models.BikeRequest
	var err error
	if req.BikeID, err = c.readValid("Enter Bike ID: ", "required", "Bike ID cannot be empty."); err != nil {
		return err
	}
	if req.BikeType, err = c.readValid("Enter the type of Bike: ", "required", "Type cannot be empty."); err != nil {
		return err
	}
	if req.Size, err = c.readValid("Enter the size: ", "required", "Size cannot be empty."); err != nil {
		return err
	}
	if req.Color, err = c.readValid("Enter Color: ", "required", "Color cannot be empty."); err != nil {
		return err
	}
	for {
		if req.RentalPrice, err = c.readFloat("Enter rental Price per Hour: "); err != nil {
			return err
		}
		if req.RentalPrice >= 0 {
			break
		}
		c.println("Rental price cannot be negative.")
	}

	if _, err := c.ledger.AddBike(ctx, req); err != nil {
		c.println(describe(err))
		return nil
	}
	c.println("Bike has been added to the inventory successfully!")
	return nil
}

func (c *Console) deleteBike(ctx context.Context) error {
	c.viewBikes()
	c.println("\n--- Delete Bike ---")
	bikeID, err := c.readLine("Enter Bike ID to delete: ")
	if err != nil {
		return err
	}
	if _, err := c.ledger.DeleteBike(ctx, bikeID); err != nil {
		c.printf("Bike with ID %s not found in inventory.\n", bikeID)
		return nil
	}
	c.printf("Bike %s has been deleted successfully.\n", bikeID)
	return nil
}

func (c *Console) markCompleted(ctx context.Context) error {
	c.printRentals()
	c.println("\n--- Mark Bike as Completed ---")
	if len(c.ledger.Bookings()) == 0 {
		c.println("No active rentals to complete.")
		return nil
	}

	bikeID, err := c.readLine("Enter the Bike ID to mark as completed: ")
	if err != nil {
		return err
	}
	if _, err := c.ledger.CompleteRental(ctx, bikeID); err != nil {
		c.printf("No active rental found for Bike ID %s.\n", bikeID)
		return nil
	}
	c.printf("Rental for Bike ID %s has been marked as completed.\n", bikeID)
	return nil
}

func (c *Console) viewRentals(ctx context.Context) error {
	c.println("\n--- Rentals ---")
	if len(c.ledger.Bookings()) == 0 {
		c.println("No rentals available at the moment.")
		return nil
	}
	c.printRentals()

	for {
		answer, err := c.readLine("Do you want to delete a rental? (yes/no): ")
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "yes":
			n, err := c.readLine("Enter the rental number to delete: ")
			if err != nil {
				return err
			}
			index, convErr := strconv.Atoi(n)
			if convErr != nil {
				c.println("Invalid input. Please enter a valid booking number.")
				continue
			}
			if _, err := c.ledger.DeleteBooking(ctx, index); err != nil {
				c.println("Invalid booking number. Please try again.")
				continue
			}
			c.printf("Rental #%d has been successfully deleted.\n", index)
		case "no":
			c.println("Returning to Admin Dashboard...")
			return nil
		default:
			c.println("Invalid choice. Please enter 'yes' or 'no'.")
		}
	}
}

func (c *Console) printRentals() {
	for i, booking := range c.ledger.Bookings() {
		c.printf("\nRental #%d\n", i+1)
		c.printf("  First Name     : %s\n", booking.Customer.FirstName)
		c.printf("  Last Name      : %s\n", booking.Customer.LastName)
		c.printf("  Phone Number   : %s\n", booking.Customer.Phone)
		c.printf("  Bike ID        : %s\n", booking.BikeID)
		c.printf("  Rental Hours   : %.2f\n", booking.RentalHours)
		c.printf("  Total Cost     : Php %.2f\n", booking.TotalCost)
		c.printf("  Status         : %s\n", booking.Status)
		c.println(strings.Repeat("-", 40))
	}
}

func (c *Console) exportHistory() {
	path, err := c.exporter.Export(c.ledger.History())
	if err != nil {
		c.printf("Error exporting rental history: %v\n", err)
		return
	}
	c.printf("Rental history exported to %s.\n", path)
}

func (c *Console) readLine(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) readChoice(label string) (int, error) {
	for {
		line, err := c.readLine(label)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil {
			return n, nil
		}
		c.println("Invalid input. Please enter a number.")
	}
}

func (c *Console) readFloat(label string) (float64, error) {
	for {
		line, err := c.readLine(label)
		if err != nil {
			return 0, err
		}
		f, convErr := strconv.ParseFloat(line, 64)
		if convErr == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
		c.println("Invalid input. Please enter a valid number.")
	}
}

// readValid re-prompts until the answer satisfies tag.
func (c *Console) readValid(label, tag, invalid string) (string, error) {
	for {
		line, err := c.readLine(label)
		if err != nil {
			return "", err
		}
		if c.validate.Var(line, tag) == nil {
			return line, nil
		}
		c.println(invalid)
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func describe(err error) string {
	switch {
	case errors.Is(err, models.ErrBikeNotFound):
		return "Bike not found."
	case errors.Is(err, models.ErrBikeUnavailable):
		return "Bike is currently not available for rent. Please select a different bike."
	case errors.Is(err, models.ErrInvalidDuration):
		return "Rental duration must be greater than zero."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}
