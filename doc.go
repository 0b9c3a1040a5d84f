/*
 * doc.go, part of gomdsim.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package mdsim drives molecular dynamics simulations with the Amber programs tleap and sander.
A Sim owns one run directory. It keeps the parameters of the build, the run and
the restraints in validated tables, and knows which input files are stale through
a set of dirty flags, so each operation only rewrites what changed.


	**mdsim Capabilities**


    Builds a system from a one-letter sequence or a PDB file with tleap, with
	optional caps, disulfide bridges and extra bonds. PB radii in the prmtop
	can be replaced after the build.

    Runs minimizations, MD and single point energies with sander, and collects
	the energy terms of each run into the Sim data.

    Distance, angle and torsion restraints between atoms or residues, ion pair
	repulsion, phi/psi restraints and positional anchors.

    Reads and writes the current coordinates and velocities, keeps reference
	positions and allows undoing the last run.

    Swaps data, configurations and restraints between two simulations, which is
	the basis of the replica exchange in the exchange subpackage.

    Saves and loads compressed checkpoints of the whole state, and concatenates
	trajectories and energy files of successive runs.

The Runner interface isolates the actual execution of the Amber programs, so a Sim
can be tested or driven remotely without Amber installed.
*/
package mdsim
