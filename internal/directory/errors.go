package directory

import "errors"

var (
	// ErrConfiguration reports missing or unusable directory settings,
	// such as a user bind requested without credentials.
	ErrConfiguration = errors.New("directory configuration error")

	// ErrAuthentication reports that the directory rejected the bind credentials.
	ErrAuthentication = errors.New("directory authentication failed")

	// ErrNoOrganizationalUnits reports that no OUs were found under the
	// configured parent base, so there is nothing to search.
	ErrNoOrganizationalUnits = errors.New("no organizational units found")

	// ErrDirectory reports a transport or protocol failure talking to the directory.
	ErrDirectory = errors.New("directory unavailable")
)
