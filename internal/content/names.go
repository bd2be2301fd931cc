package content

import "fmt"

// Artifact document names generated for a guest. These names are also the
// archive set: a re-package archives any existing document with one of these
// names before writing fresh ones.

func DescriptionName(guest string) string {
	return fmt.Sprintf("%s - Episode Description", guest)
}

func TitleOptionsName(guest string) string {
	return fmt.Sprintf("%s - Title Options", guest)
}

func HostSocialName(guest string) string {
	return fmt.Sprintf("%s - LHT Social Posts", guest)
}

func GuestSocialName(guest string) string {
	return fmt.Sprintf("%s - Guest Social Posts", guest)
}

func DeliverySummaryName(guest string) string {
	return fmt.Sprintf("%s - Delivery Summary", guest)
}

// ArtifactNames returns every document name a run regenerates for a guest.
func ArtifactNames(guest string) []string {
	return []string{
		DescriptionName(guest),
		TitleOptionsName(guest),
		HostSocialName(guest),
		GuestSocialName(guest),
		DeliverySummaryName(guest),
	}
}

// GuestPackageFolder returns the folder name holding the guest's shareable
// shortcuts, e.g. "Guest Package - Jane Doe".
func GuestPackageFolder(prefix, guest string) string {
	return fmt.Sprintf("%s - %s", prefix, guest)
}
