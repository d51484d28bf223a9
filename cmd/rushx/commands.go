package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	rushx "github.com/woedy/rush-express-super"
)

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.session.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			user := a.session.User()
			fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Logout()
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Hydrate(cmd.Context())
			user := a.session.User()
			if user == nil {
				return rushx.ErrNotAuthenticated
			}
			fmt.Printf("#%d %s <%s> role=%s verified=%t suspended=%t\n",
				user.ID, user.Username, user.Email, user.Role, user.IsVerified, user.IsSuspended)
			return nil
		},
	}
}

func newOrdersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List orders for the configured app role",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Hydrate(cmd.Context())

			var orders []rushx.Order
			switch a.cfg.AppName {
			case "merchant":
				orders, err = a.client.Merchant.ListOrders(cmd.Context())
			case "rider":
				orders, err = a.client.Rider.AvailableOrders(cmd.Context())
			case "admin":
				orders, err = a.client.Admin.ListOrders(cmd.Context())
			default:
				orders, err = a.client.Customer.ListOrders(cmd.Context())
			}
			if err != nil {
				return err
			}

			for _, order := range orders {
				fmt.Printf("#%d %-10s total=%s %s -> %s\n",
					order.ID, order.Status, order.Total, order.PickupCity, order.DropoffCity)
			}
			return nil
		},
	}
}

func newQuoteCmd() *cobra.Command {
	var branchID, addressID int64
	var items []string
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a prospective order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Hydrate(cmd.Context())

			req := rushx.QuoteOrderRequest{
				MerchantBranchID: branchID,
				DropoffAddressID: addressID,
			}
			for _, spec := range items {
				item, err := parseItem(spec)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
			}

			quote, err := a.client.Customer.QuoteOrder(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("subtotal=%s delivery_fee=%s total=%s\n",
				quote.Subtotal, quote.DeliveryFee, quote.Total)
			return nil
		},
	}
	cmd.Flags().Int64Var(&branchID, "branch", 0, "Merchant branch id")
	cmd.Flags().Int64Var(&addressID, "address", 0, "Dropoff address id")
	cmd.Flags().StringSliceVar(&items, "item", nil, "Line item as id:quantity (repeatable)")
	_ = cmd.MarkFlagRequired("branch")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

// parseItem parses "11:2" into an item request.
func parseItem(spec string) (rushx.OrderItemRequest, error) {
	parts := strings.SplitN(spec, ":", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return rushx.OrderItemRequest{}, fmt.Errorf("invalid item %q: %w", spec, err)
	}
	quantity := 1
	if len(parts) == 2 {
		quantity, err = strconv.Atoi(parts[1])
		if err != nil || quantity < 1 {
			return rushx.OrderItemRequest{}, fmt.Errorf("invalid quantity in %q", spec)
		}
	}
	return rushx.OrderItemRequest{InventoryItemID: id, Quantity: quantity}, nil
}

func newTrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track <order-id>",
		Short: "Follow an order's live tracking feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Hydrate(cmd.Context())

			view := rushx.NewOrderView(a.client.Customer, a.client.Realtime, a.logger)
			printed := 0
			view.OnUpdate = func() {
				events := view.Events()
				for _, event := range events[printed:] {
					coords := ""
					if event.Latitude != nil && event.Longitude != nil {
						coords = fmt.Sprintf(" @ %s,%s", *event.Latitude, *event.Longitude)
					}
					fmt.Printf("%s %s%s\n",
						event.CreatedAt.Format("15:04:05"), event.Status, coords)
				}
				printed = len(events)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := view.Select(ctx, orderID); err != nil {
				return err
			}
			defer view.Deselect()

			fmt.Printf("Tracking order #%d, press Ctrl-C to stop\n", orderID)
			<-ctx.Done()
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <order-id> [message]",
		Short: "Open an order's chat; optionally send a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Hydrate(cmd.Context())

			view := rushx.NewOrderView(a.client.Customer, a.client.Realtime, a.logger)
			printed := 0
			view.OnUpdate = func() {
				messages := view.Messages()
				for _, message := range messages[printed:] {
					fmt.Printf("[%s] #%d: %s\n",
						message.CreatedAt.Format("15:04:05"), message.Sender, message.Message)
				}
				printed = len(messages)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := view.Select(ctx, orderID); err != nil {
				return err
			}
			defer view.Deselect()

			if len(args) > 1 {
				if err := view.SendChat(strings.Join(args[1:], " ")); err != nil {
					return err
				}
			}

			fmt.Printf("Chatting on order #%d, press Ctrl-C to stop\n", orderID)
			<-ctx.Done()
			return nil
		},
	}
}

func newAvailabilityCmd() *cobra.Command {
	var online bool
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Set rider availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Hydrate(cmd.Context())

			availability, err := a.client.Rider.SetAvailability(cmd.Context(), rushx.RiderAvailability{
				IsOnline: online,
			})
			if err != nil {
				return err
			}
			fmt.Printf("online=%t\n", availability.IsOnline)
			return nil
		},
	}
	cmd.Flags().BoolVar(&online, "online", true, "Whether the rider is accepting orders")
	return cmd
}

func newEarningsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "earnings",
		Short: "List rider earnings periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Hydrate(cmd.Context())

			earnings, err := a.client.Rider.Earnings(cmd.Context())
			if err != nil {
				return err
			}
			for _, period := range earnings {
				fmt.Printf("%s..%s deliveries=%d earnings=%s\n",
					period.PeriodStart, period.PeriodEnd, period.TotalDeliveries, period.TotalEarnings)
			}
			return nil
		},
	}
}
